// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/aibor/vmmtest/internal/artifact"
	"github.com/aibor/vmmtest/internal/vmm"
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	flags := newFlags(cfg.Stderr)

	err := flags.ParseArgs(args[1:])
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.debug)

	err = run(ctx, flags)
	if err != nil {
		slog.Error(err.Error())
		return 1
	}

	return 0
}

func handleParseArgsError(err error) int {
	// [flag.ErrHelp] is returned when help is requested. So exit without
	// error in this case.
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return -1
}

func run(ctx context.Context, flags *flags) error {
	resolver, err := newResolver(flags)
	if err != nil {
		return err
	}

	spec := vmm.CommandSpec{
		Executable: flags.vmmBin,
		Cmdline:    flags.cmdline,
		Memory:     flags.memory,
		VCPUs:      flags.vcpus,
		UsePTY:     flags.usePTY,
	}

	spec.Kernel, err = resolvePath(ctx, resolver, flags, flags.kernel, "kernel")
	if err != nil {
		return err
	}

	if flags.disk != "" {
		spec.Disk, err = resolvePath(ctx, resolver, flags, flags.disk, "disk")
		if err != nil {
			return err
		}
	}

	spec.AddDefaults()

	// Each expect target gets its own VM. The sessions share no state, so
	// they can run concurrently if requested.
	eg := errgroup.Group{}
	if !flags.parallel {
		eg.SetLimit(1)
	}

	for _, target := range flags.expects {
		target := target

		eg.Go(func() error {
			return runScenario(spec, target, flags)
		})
	}

	return eg.Wait()
}

func runScenario(spec vmm.CommandSpec, target string, flags *flags) error {
	session, err := vmm.Start(spec)
	if err != nil {
		return fmt.Errorf("start vmm: %w", err)
	}

	defer func() {
		err := session.Close()
		if err != nil {
			slog.Error("Failed to close session", slog.Any("error", err))
		}
	}()

	// The memory line shows up early in the boot log, so it must be
	// awaited before anything later in the output.
	if flags.checkMemory {
		err := session.ExpectMemory(spec.Memory, flags.timeout)
		if err != nil {
			return fmt.Errorf("check memory: %w", err)
		}

		slog.Debug("Guest memory verified",
			slog.Uint64("mib", spec.Memory))
	}

	line, err := session.Expect(target, flags.timeout)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}

	slog.Debug("Matched console line", slog.String("line", line))

	if flags.checkVCPUs {
		err := session.ExpectVCPUs(flags.prompt, int(spec.VCPUs),
			flags.timeout)
		if err != nil {
			return fmt.Errorf("check vcpus: %w", err)
		}

		slog.Debug("Guest vcpus verified",
			slog.Uint64("num", spec.VCPUs))
	}

	err = session.Shutdown(0)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func newResolver(flags *flags) (*artifact.Resolver, error) {
	if flags.manifest == "" {
		return nil, nil
	}

	manifest, err := artifact.LoadManifest(flags.manifest)
	if err != nil {
		return nil, err
	}

	return &artifact.Resolver{
		BaseURL:  flags.baseURL,
		Root:     flags.resources,
		Manifest: manifest,
	}, nil
}

// resolvePath returns nameOrPath as is if it is a local file. Otherwise it
// is treated as an artifact name and resolved via the manifest.
func resolvePath(
	ctx context.Context,
	resolver *artifact.Resolver,
	flags *flags,
	nameOrPath string,
	resourceType string,
) (string, error) {
	if _, err := os.Stat(nameOrPath); err == nil {
		return nameOrPath, nil
	}

	if resolver == nil {
		return "", fmt.Errorf(
			"%s %q is not a local file and no -manifest is set",
			resourceType, nameOrPath,
		)
	}

	path, err := resolver.Resolve(ctx, artifact.Query{
		Type:    resourceType,
		Name:    nameOrPath,
		Version: flags.version,
	})
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", resourceType, err)
	}

	return path, nil
}
