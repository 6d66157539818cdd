package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/recgen/internal/store"
)

// CacheOptions holds flags for the cache command.
type CacheOptions struct {
	*RootOptions
	Record string // show the history of one record
	Build  string // show the outputs of one build ("latest" for the newest)
	Decls  bool   // include canonical declarations
}

// CacheEntry is one cached output as listed by the cache command.
type CacheEntry struct {
	store.Output
	Decl map[string]any `json:"decl,omitempty"`
}

// CacheResult lists the contents of a build cache.
type CacheResult struct {
	Builds  []store.Build `json:"builds"`
	Outputs []CacheEntry  `json:"outputs"`
}

// NewCacheCommand creates the cache command.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache <db>",
		Short: "List the contents of a build cache",
		Long: `List the builds and cached outputs of a build cache written by
"recgen compile --cache".

Examples:
  recgen cache ./recgen.db
  recgen cache ./recgen.db --build latest
  recgen cache ./recgen.db --record Pair --decls`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Record, "record", "", "show every cached output of a record")
	cmd.Flags().StringVar(&opts.Build, "build", "", `show the outputs of a build id, or "latest"`)
	cmd.Flags().BoolVar(&opts.Decls, "decls", false, "include canonical declarations")

	return cmd
}

func runCache(opts *CacheOptions, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	// Opening would create a missing database.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("cache database not found: %s", dbPath))
	}
	if opts.Record != "" && opts.Build != "" {
		return outputCommandError(formatter, ErrCodeGeneric, "--record and --build are mutually exclusive")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCache, err.Error())
	}
	defer st.Close()

	result := CacheResult{}
	result.Builds, err = st.ReadBuilds(ctx)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCache, err.Error())
	}

	var outputs []store.Output
	switch {
	case opts.Record != "":
		outputs, err = st.ReadRecordHistory(ctx, opts.Record)
	case opts.Build == "latest":
		b, ok, lerr := st.LatestBuild(ctx)
		switch {
		case lerr != nil:
			err = lerr
		case ok:
			outputs, err = st.ReadBuildOutputs(ctx, b.ID)
		}
	case opts.Build != "":
		outputs, err = st.ReadBuildOutputs(ctx, opts.Build)
	default:
		outputs, err = st.ReadOutputs(ctx)
	}
	if err != nil {
		return outputCommandError(formatter, ErrCodeCache, err.Error())
	}

	result.Outputs = make([]CacheEntry, 0, len(outputs))
	for _, o := range outputs {
		entry := CacheEntry{Output: o}
		if opts.Decls {
			entry.Decl, err = o.DeclObject()
			if err != nil {
				return outputCommandError(formatter, ErrCodeCache, err.Error())
			}
		}
		result.Outputs = append(result.Outputs, entry)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputCacheText(formatter, result)
}

func outputCacheText(formatter *OutputFormatter, result CacheResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Builds (%d):\n", len(result.Builds))
	for _, b := range result.Builds {
		fmt.Fprintf(w, "  #%d %s package=%s records=%d reused=%d compiler=%s\n",
			b.Seq, b.ID, b.Package, b.Records, b.Reused, b.CompilerVersion)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Outputs (%d):\n", len(result.Outputs))
	for _, o := range result.Outputs {
		fmt.Fprintf(w, "  %s [%s] %s %s (%d bytes, build %s)\n",
			o.Record, o.Identity, o.File, shortHash(o.Hash), len(o.Source), o.BuildID)
		if o.Decl != nil {
			fmt.Fprintf(w, "    decl: %v\n", o.Decl)
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
