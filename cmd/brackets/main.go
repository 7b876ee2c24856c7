// Command brackets inspects bracket nesting in files without acme.
//
// It runs the same scanner, syntax-aware admission and configuration as the
// acme-brackets daemon, which makes it handy for checking a config or a
// grammar's handling of a tricky file.
package main

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/cptaffe/acme-brackets"
	"github.com/cptaffe/acme-brackets/config"
	"github.com/cptaffe/acme-brackets/logger"
	"github.com/cptaffe/acme-brackets/syntax"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	verbose    bool
	lang       string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "brackets",
		Short: "Inspect bracket nesting and matching in files",
		Long: `brackets runs the acme-brackets scanner over a file and reports what
the daemon would color: every bracket with its nesting level and partner,
or the bracket pairs enclosing a selection.

Offsets are rune offsets, as acme uses for window bodies.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := logger.New(opts.verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cmd.SetContext(logger.NewContext(cmd.Context(), l))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().StringVar(&opts.lang, "lang", "", "language ID, overriding filename detection")

	root.AddCommand(
		newScanCmd(opts),
		newEncloseCmd(opts),
		newMatchCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// document is a file loaded and classified for scanning.
type document struct {
	path  string
	text  string
	lang  *syntax.Language
	admit brackets.AdmitFunc
	cfg   *config.Config
	gov   *brackets.Governor
	safe  bool
}

// load reads path and prepares the admission filter its language and the
// config call for.
func (o *options) load(ctx context.Context, path string) (*document, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lang *syntax.Language
	if o.lang != "" {
		if lang = syntax.LangByID(o.lang); lang == nil {
			return nil, fmt.Errorf("unknown language %q (have %v)", o.lang, syntax.LanguageIDs())
		}
	} else {
		handlers, err := syntax.CompileHandlers(cfg)
		if err != nil {
			return nil, err
		}
		if lang = syntax.DetectLanguage(handlers, path, body); lang == nil {
			lang = syntax.LangByID(syntax.TextID)
		}
	}

	d := &document{
		path: path,
		text: string(body),
		lang: lang,
		cfg:  cfg,
		gov:  brackets.NewGovernor(cfg.Limits(), nil),
	}
	d.safe = d.gov.DocumentSafe(utf8.RuneCount(body))
	if !d.safe {
		logger.L(ctx).Warn("document exceeds max_document_size, skipping",
			zap.String("path", path), zap.Int("max", cfg.MaxDocumentSize))
		return d, nil
	}
	d.admit = brackets.AllOf(cfg.Admission(), syntax.Admission(lang, body))
	logger.L(ctx).Debug("loaded document",
		zap.String("path", path), zap.String("lang", lang.Name), zap.Int("bytes", len(body)))
	return d, nil
}

// marks scans d, or returns nil for a document over the size limit.
func (d *document) marks(ctx context.Context) []brackets.Mark {
	if !d.safe {
		return nil
	}
	marks, _ := brackets.Timed(ctx, d.gov, brackets.OpScan, func() []brackets.Mark {
		return brackets.Scan(d.text, d.admit)
	})
	return marks
}
