// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vmm

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

const (
	// DefaultKernelCmdline is the boot command line for the reference guest
	// images. It routes the console to the first serial port and makes the
	// guest reboot instead of halting on panic.
	DefaultKernelCmdline = "console=ttyS0 i8042.nokbd reboot=t panic=1 pci=off"

	// x86KernelLoadAddr is the physical address bzImage kernels are loaded
	// at on x86_64. Other architectures do not take a load address.
	x86KernelLoadAddr = 1048576

	memDefault  = 1024
	vcpuDefault = 1
)

// MMIO gap layout of the reference VMM. Guest memory that reaches into the
// gap is partitioned around it, so memory size test matrices should probe
// the sizes around the gap start.
const (
	MMIOGapEnd   = uint64(1) << 32
	MMIOGapSize  = uint64(768) << 20
	MMIOGapStart = MMIOGapEnd - MMIOGapSize
)

// CommandSpec defines the parameters for a VMM process.
type CommandSpec struct {
	// Path to the vmm binary.
	Executable string

	// Path to the kernel image to boot.
	Kernel string

	// Kernel command line. [DefaultKernelCmdline] is used if empty.
	Cmdline string

	// Load address for the kernel image. Only applicable on x86_64, where
	// it defaults to [x86KernelLoadAddr].
	KernelLoadAddr uint64

	// Boot with the kernel's built-in command line instead of passing one.
	DefaultCmdline bool

	// Memory for the guest in MiB.
	Memory uint64

	// Number of vCPUs for the guest.
	VCPUs uint64

	// Path to a root filesystem image attached as block device. The image
	// is copied to a scratch file before boot, so guest writes never touch
	// the original.
	Disk string

	// Attach the console to a pty instead of plain pipes. Some guest
	// shells only print their prompt on a tty.
	UsePTY bool
}

// AddDefaults fills unset fields with the reference guest configuration.
func (s *CommandSpec) AddDefaults() {
	if s.Memory == 0 {
		s.Memory = memDefault
	}

	if s.VCPUs == 0 {
		s.VCPUs = vcpuDefault
	}

	if s.KernelLoadAddr == 0 && runtime.GOARCH == "amd64" {
		s.KernelLoadAddr = x86KernelLoadAddr
	}
}

// Validate checks the spec for missing required fields.
func (s *CommandSpec) Validate() error {
	switch {
	case s.Executable == "":
		return &ArgumentError{"no vmm binary given"}
	case s.Kernel == "":
		return &ArgumentError{"no kernel given"}
	case s.Memory == 0:
		return &ArgumentError{"memory must not be 0"}
	case s.VCPUs == 0:
		return &ArgumentError{"vcpus must not be 0"}
	}

	return nil
}

// arguments compiles the argument list for the VMM command.
func (s *CommandSpec) arguments() []string {
	args := []string{
		"--memory", fmt.Sprintf("size_mib=%d", s.Memory),
		"--vcpu", fmt.Sprintf("num=%d", s.VCPUs),
		"--kernel", s.kernelConfig(),
	}

	if s.Disk != "" {
		args = append(args, "--block", "path="+s.Disk)
	}

	return args
}

// kernelConfig builds the composite value for the kernel flag. It encodes
// the boot command line, the image path and, where applicable, the load
// address.
func (s *CommandSpec) kernelConfig() string {
	var parts []string

	if !s.DefaultCmdline {
		cmdline := s.Cmdline
		if cmdline == "" {
			cmdline = DefaultKernelCmdline
		}

		parts = append(parts, "cmdline="+cmdline)
	}

	parts = append(parts, "path="+s.Kernel)

	if s.KernelLoadAddr != 0 {
		parts = append(parts,
			fmt.Sprintf("kernel_load_addr=%d", s.KernelLoadAddr))
	}

	return strings.Join(parts, ",")
}

// copyScratchDisk copies the disk image at path to a temporary file and
// returns its path.
func copyScratchDisk(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open disk image: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "vmmtest-disk-*.img")
	if err != nil {
		return "", fmt.Errorf("create scratch disk: %w", err)
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("copy disk image: %w", err)
	}

	return dst.Name(), nil
}
