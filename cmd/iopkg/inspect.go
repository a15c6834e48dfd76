package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/iopkg"
	"github.com/arloliu/iopkg/asset"
	"github.com/arloliu/iopkg/uobject"
	"github.com/arloliu/iopkg/version"
)

type inspectOptions struct {
	engine    string
	global    string
	container string
	verbose   bool
	load      bool
}

func newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <package>",
		Short: "Print the header tables of a package",
		Long: `Print the summary, imports and exports of a cooked package.

The engine release selects the header layout: 5.0 and later read the zen layout,
older releases the legacy layout. Zen packages need the container header to find
their bundles and imported packages; without it a single bundle is assumed.

With --load every export is materialized and failures are reported per export.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.engine, "engine", "e", version.ZenLayout.String(), "engine release that cooked the package (major.minor)")
	cmd.Flags().StringVar(&opts.global, "global", "", "global script object table file")
	cmd.Flags().StringVar(&opts.container, "container", "", "container header file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log loader diagnostics to stderr")
	cmd.Flags().BoolVar(&opts.load, "load", false, "materialize every export")

	return cmd
}

func runInspect(ctx context.Context, out, errOut io.Writer, opts *inspectOptions, path string) error {
	engine, err := version.Parse(opts.engine)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if opts.verbose {
		log = zap.New(zapcoreFor(errOut))
	}
	defer func() { _ = log.Sync() }()

	loadOpts := []asset.LoadOption{asset.WithEngineVersion(engine), asset.WithLogger(log)}
	if opts.global != "" {
		data, err := os.ReadFile(opts.global)
		if err != nil {
			return err
		}
		table, err := iopkg.LoadScriptTable(data)
		if err != nil {
			return fmt.Errorf("global data %s: %w", opts.global, err)
		}
		loadOpts = append(loadOpts, asset.WithGlobalData(table))
	}
	if opts.container != "" {
		data, err := os.ReadFile(opts.container)
		if err != nil {
			return err
		}
		header, err := iopkg.LoadContainerHeader(data)
		if err != nil {
			return fmt.Errorf("container header %s: %w", opts.container, err)
		}
		loadOpts = append(loadOpts, asset.WithContainerHeader(header))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pkg, err := iopkg.LoadPackage(data, loadOpts...)
	if err != nil {
		return err
	}

	printSummary(out, pkg)
	printImports(out, pkg)
	printExports(out, pkg)

	if opts.load {
		return printLoad(ctx, out, pkg)
	}

	return nil
}

func printSummary(out io.Writer, pkg *asset.Package) {
	s := pkg.Summary
	fmt.Fprintf(out, "Package:    %s\n", pkg.Name)
	fmt.Fprintf(out, "ID:         %s\n", pkg.ID)
	fmt.Fprintf(out, "Layout:     %s (engine %s)\n", s.Layout, pkg.Versions().Engine)
	fmt.Fprintf(out, "Flags:      0x%08X\n", uint32(s.PackageFlags))
	fmt.Fprintf(out, "Header:     %d bytes\n", s.TotalHeaderSize)
	fmt.Fprintf(out, "Names:      %d\n", s.NameCount)
	fmt.Fprintf(out, "Bundles:    %d (%d entries)\n", len(pkg.BundleHeaders), len(pkg.BundleEntries))
	fmt.Fprintf(out, "Bulk data:  %d\n", s.BulkDataStartOffset)
	for i, id := range pkg.ImportedPackageIDs {
		fmt.Fprintf(out, "Imports package %d: %s\n", i, id)
	}
}

func printImports(out io.Writer, pkg *asset.Package) {
	fmt.Fprintf(out, "\nImports (%d)\n", len(pkg.ImportMap))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tINDEX\tNAME")
	for i, idx := range pkg.ImportMap {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, idx, nameOf(pkg.ResolveObjectIndex(idx)))
	}
	_ = tw.Flush()
}

func printExports(out io.Writer, pkg *asset.Package) {
	fmt.Fprintf(out, "\nExports (%d)\n", pkg.ExportCount())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tCLASS\tOUTER\tOFFSET\tSIZE\tFLAGS")
	for i := range pkg.ExportMap {
		e := &pkg.ExportMap[i]
		name, _ := pkg.ExportName(i)
		offset := "-"
		if slot := pkg.Export(i); slot.State() != asset.StateUnregistered {
			offset = fmt.Sprint(slot.DataOffset())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			i, name,
			nameOf(pkg.ResolveObjectIndex(e.ClassIndex)),
			nameOf(pkg.ResolveObjectIndex(e.OuterIndex)),
			offset, e.CookedSerialSize, uobject.ObjectFlags(e.ObjectFlags),
		)
	}
	_ = tw.Flush()
}

func printLoad(ctx context.Context, out io.Writer, pkg *asset.Package) error {
	// Failures are memoized per export, so they can be reported after the fact.
	_ = pkg.Preload(ctx, 0)

	failed := 0
	fmt.Fprintln(out)
	for i := range pkg.ExportMap {
		if pkg.Export(i).State() == asset.StateUnregistered {
			continue
		}
		obj, err := pkg.ExportObject(i)
		if err != nil {
			failed++
			fmt.Fprintf(out, "export %d: %v\n", i, err)
			continue
		}
		fmt.Fprintf(out, "export %d: %s (%s)\n", i, uobject.PathName(obj), obj.Base().ClassName())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed to load", failed, pkg.ExportCount())
	}

	return nil
}

func nameOf(r asset.ResolvedObject) string {
	if r == nil {
		return "-"
	}

	return r.Name()
}
