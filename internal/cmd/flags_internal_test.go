// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/vmmtest/internal/vmm"
)

func TestFlagsParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		assert      func(t *testing.T, f *flags)
		errExpected bool
	}{
		{
			name: "minimal",
			args: []string{"-kernel", "vmlinux-hello-busybox", "vmm-bin"},
			assert: func(t *testing.T, f *flags) {
				t.Helper()
				assert.Equal(t, "vmm-bin", f.vmmBin)
				assert.Equal(t, "vmlinux-hello-busybox", f.kernel)
				// Without explicit targets the prompt is awaited.
				assert.Equal(t, stringList{vmm.PromptBusybox}, f.expects)
				assert.Equal(t, 30*time.Second, f.timeout)
			},
		},
		{
			name: "full scenario",
			args: []string{
				"-kernel", "/res/vmlinux",
				"-disk", "ubuntu-focal-rootfs-x86_64.ext4",
				"-vcpus", "4",
				"-memory", "2048",
				"-prompt", vmm.PromptUbuntu,
				"-expect", "Hello, world",
				"-expect", "Welcome",
				"-check-vcpus",
				"-check-memory",
				"-parallel",
				"-pty",
				"-timeout", "20s",
				"vmm-bin",
			},
			assert: func(t *testing.T, f *flags) {
				t.Helper()
				assert.EqualValues(t, 4, f.vcpus)
				assert.EqualValues(t, 2048, f.memory)
				assert.Equal(t, vmm.PromptUbuntu, f.prompt)
				assert.Equal(t,
					stringList{"Hello, world", "Welcome"}, f.expects)
				assert.True(t, f.checkVCPUs)
				assert.True(t, f.checkMemory)
				assert.True(t, f.parallel)
				assert.True(t, f.usePTY)
				assert.Equal(t, 20*time.Second, f.timeout)
			},
		},
		{
			name:        "no binary",
			args:        []string{"-kernel", "/res/vmlinux"},
			errExpected: true,
		},
		{
			name:        "no kernel",
			args:        []string{"vmm-bin"},
			errExpected: true,
		},
		{
			name: "trailing arguments",
			args: []string{
				"-kernel", "/res/vmlinux", "vmm-bin", "surplus",
			},
			errExpected: true,
		},
		{
			name:        "unknown flag",
			args:        []string{"-frobnicate", "vmm-bin"},
			errExpected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := newFlags(io.Discard)

			err := flags.ParseArgs(tt.args)
			if tt.errExpected {
				require.ErrorIs(t, err, &ParseArgsError{})
				return
			}

			require.NoError(t, err)

			if tt.assert != nil {
				tt.assert(t, flags)
			}
		})
	}
}
