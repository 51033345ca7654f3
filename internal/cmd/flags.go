// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aibor/vmmtest/internal/console"
	"github.com/aibor/vmmtest/internal/vmm"
)

const (
	name = "vmmtest"

	baseURLDefault = "https://vmm-reference-resources.s3.amazonaws.com"

	usageHeader = `Usage of '%s':
    %s [flags...] vmm-binary

Boots the given VMM binary and validates the guest via its serial console.

Kernel and disk may be given as local file paths or as artifact names that
are resolved via the manifest given with -manifest.

`
)

// stringList collects repeatable flag values.
type stringList []string

// String implements the [flag.Value] interface.
func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

// Set implements the [flag.Value] interface.
func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

type flags struct {
	flagSet *flag.FlagSet

	vmmBin  string
	kernel  string
	disk    string
	cmdline string
	vcpus   uint64
	memory  uint64
	usePTY  bool

	expects stringList
	prompt  string
	timeout time.Duration

	checkVCPUs  bool
	checkMemory bool
	parallel    bool

	manifest  string
	resources string
	baseURL   string
	version   string

	debug bool
}

func newFlags(output io.Writer) *flags {
	flags := &flags{
		prompt:  vmm.PromptBusybox,
		timeout: console.DefaultTimeout,
		baseURL: baseURLDefault,
	}

	flags.initFlagset(output)

	return flags
}

func (f *flags) initFlagset(output io.Writer) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), usageHeader, name, name)
		fs.PrintDefaults()
	}

	fs.StringVar(
		&f.kernel,
		"kernel",
		f.kernel,
		"kernel image to boot, as path or artifact name",
	)

	fs.StringVar(
		&f.disk,
		"disk",
		f.disk,
		"root filesystem image to attach, as path or artifact name",
	)

	fs.StringVar(
		&f.cmdline,
		"cmdline",
		f.cmdline,
		"kernel command line, empty for the reference default",
	)

	fs.Uint64Var(
		&f.vcpus,
		"vcpus",
		f.vcpus,
		"number of vCPUs for the guest",
	)

	fs.Uint64Var(
		&f.memory,
		"memory",
		f.memory,
		"memory (in MiB) for the guest",
	)

	fs.BoolVar(
		&f.usePTY,
		"pty",
		f.usePTY,
		"attach the console to a pty instead of pipes",
	)

	fs.Var(
		&f.expects,
		"expect",
		"string to await in console output. Flag may be used more than"+
			" once. Each occurrence boots a separate VM.",
	)

	fs.StringVar(
		&f.prompt,
		"prompt",
		f.prompt,
		"shell prompt of the guest image",
	)

	fs.DurationVar(
		&f.timeout,
		"timeout",
		f.timeout,
		"timeout for each console wait",
	)

	fs.BoolVar(
		&f.checkVCPUs,
		"check-vcpus",
		f.checkVCPUs,
		"verify the guest sees the configured number of vCPUs",
	)

	fs.BoolVar(
		&f.checkMemory,
		"check-memory",
		f.checkMemory,
		"verify the guest memory reported during boot",
	)

	fs.BoolVar(
		&f.parallel,
		"parallel",
		f.parallel,
		"run the scenarios concurrently instead of one after another",
	)

	fs.StringVar(
		&f.manifest,
		"manifest",
		f.manifest,
		"path to the artifact manifest",
	)

	fs.StringVar(
		&f.resources,
		"resources",
		f.resources,
		"local artifact cache directory",
	)

	fs.StringVar(
		&f.baseURL,
		"base-url",
		f.baseURL,
		"base URL of the artifact bucket",
	)

	fs.StringVar(
		&f.version,
		"artifact-version",
		f.version,
		"artifact version to resolve, empty for latest",
	)

	fs.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	f.flagSet = fs
}

// Fail fails like flag does. It prints the error first and then usage.
func (f *flags) Fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) ParseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	positionalArgs := f.flagSet.Args()

	// First positional argument is supposed to be the VMM binary.
	if len(positionalArgs) < 1 {
		return f.Fail("no vmm binary given", nil)
	}

	if len(positionalArgs) > 1 {
		return f.Fail("unexpected arguments: "+
			strings.Join(positionalArgs[1:], " "), nil)
	}

	f.vmmBin = positionalArgs[0]

	if f.kernel == "" {
		return f.Fail("no kernel given (use -kernel)", nil)
	}

	// Without an explicit target, wait for the shell prompt.
	if len(f.expects) == 0 {
		f.expects = stringList{f.prompt}
	}

	return nil
}
