// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vmm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Known shell prompts of the reference guest images.
const (
	// PromptBusybox is printed by the busybox initramfs shell.
	PromptBusybox = "/ #"
	// PromptUbuntu is printed by the ubuntu rootfs shell.
	PromptUbuntu = "root@ubuntu-rust-vmm:~#"
)

const (
	// cpuinfoCommand lists info about each vCPU the guest sees.
	cpuinfoCommand = "cat /proc/cpuinfo"

	// processorMarker shows up once per vCPU in the cpuinfo output.
	processorMarker = "processor"

	// memoryMarker identifies the kernel's memory boot line.
	memoryMarker = "Memory:"

	// memTolerance is the relative difference allowed between configured
	// and kernel-reported guest memory. It covers the few hundred KiB the
	// kernel reserves before logging the total.
	memTolerance = 0.001
)

// ExpectVCPUs synchronizes on the shell prompt and verifies the guest sees
// the expected number of processors.
//
// Waiting for the prompt first drains the boot output, so the cpuinfo
// output is not polluted by it.
func (s *Session) ExpectVCPUs(
	prompt string,
	expected int,
	timeout time.Duration,
) error {
	_, err := s.Expect(prompt, timeout)
	if err != nil {
		return err
	}

	output, err := s.Run(cpuinfoCommand, prompt, 0)
	if err != nil {
		return err
	}

	actual := 0

	for _, line := range output {
		if strings.Contains(line, processorMarker) {
			actual++
		}
	}

	if actual != expected {
		return fmt.Errorf("%w: expected %d, found %d",
			ErrVCPUMismatch, expected, actual)
	}

	return nil
}

// ExpectMemory waits for the kernel's memory boot line and verifies the
// initial guest memory against the configured size in MiB.
//
// The kernel logs a line like
//
//	[    0.000000] Memory: 496512K/523896K available (8204K kernel code, ...
//
// where the value after the slash is the initial guest memory in KiB.
func (s *Session) ExpectMemory(expectedMiB uint64, timeout time.Duration) error {
	line, err := s.Expect(memoryMarker, timeout)
	if err != nil {
		return err
	}

	actualKiB, err := parseMemoryLine(line)
	if err != nil {
		return err
	}

	expectedKiB := float64(expectedMiB << 10)

	normalizedDiff := (expectedKiB - float64(actualKiB)) / expectedKiB
	if normalizedDiff >= memTolerance {
		return fmt.Errorf("%w: expected %.0f KiB, found %d KiB",
			ErrMemoryMismatch, expectedKiB, actualKiB)
	}

	return nil
}

// parseMemoryLine extracts the total guest memory in KiB from the kernel's
// memory boot line. The value sits between the first slash and the
// following unit character.
func parseMemoryLine(line string) (uint64, error) {
	_, after, found := strings.Cut(line, "/")
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrMemoryLineMalformed, line)
	}

	value, _, found := strings.Cut(after, "K")
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrMemoryLineMalformed, line)
	}

	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMemoryLineMalformed, line)
	}

	return parsed, nil
}
