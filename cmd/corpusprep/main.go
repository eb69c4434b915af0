// Command corpusprep turns speech corpora into vocabulary, label and
// normalized feature artifacts for acoustic model training.
//
// Usage:
//
//	corpusprep csj --data-path /data/CSJ --out-path /work/dataset
//	corpusprep timit --tool wav --data-path /data/timit --out-path /work/dataset \
//	    --speaker-list dev=dev_speakers.txt --speaker-list test=core_test.txt
//	corpusprep clean csj --label kana < transcripts.txt
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ieee0824/corpusprep/cleaner"
	"github.com/ieee0824/corpusprep/corpus"
	"github.com/ieee0824/corpusprep/feature"
	"github.com/ieee0824/corpusprep/internal/config"
	"github.com/ieee0824/corpusprep/lexicon"
	"github.com/ieee0824/corpusprep/normalize"
	"github.com/ieee0824/corpusprep/prepare"
	"github.com/ieee0824/corpusprep/reader"
)

var configFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "corpusprep",
		Short:         "Prepare speech corpora for acoustic model training",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "YAML config file")
	pf.String("data-path", "", "corpus root directory")
	pf.String("out-path", "", "output directory")
	pf.String("tool", feature.ToolHTK, "feature source: htk or wav")
	pf.String("normalize", string(normalize.Global), "normalization: global, speaker, utterance or no")
	pf.Int("sil-duration", 50, "silence margin around utterances in frames")
	pf.Int("min-freq", 1, "minimum word frequency in the training vocabulary")
	pf.String("phone-map", "", "kana to phone table (CSJ)")
	pf.StringToString("speaker-list", nil, "partition=file speaker list, repeatable")
	pf.Bool("overwrite", false, "redo completed stages")
	pf.Bool("quiet", false, "hide progress bars")
	pf.String("log-level", "info", "log level")

	fc := feature.DefaultConfig()
	pf.String("feature-type", fc.Type, "wav features: mfcc or fbank")
	pf.Int("channels", fc.Channels, "mel filterbank channels")
	pf.Int("sample-rate", fc.SampleRate, "expected sample rate")
	pf.Float64("window", fc.WindowMs, "window length in ms")
	pf.Float64("slide", fc.SlideMs, "frame shift in ms (must match the 10 ms transcript frames)")
	pf.Bool("energy", fc.Energy, "append log energy")
	pf.Bool("delta", fc.Delta, "append delta coefficients")
	pf.Bool("deltadelta", fc.DeltaDelta, "append acceleration coefficients")

	for _, kind := range corpus.Kinds() {
		root.AddCommand(newPrepareCmd(kind))
	}
	root.AddCommand(newCleanCmd())
	return root
}

// bindFlags maps flags onto config keys. Called per command so only the
// flags of the invoked command tree are bound.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	keys := map[string]string{
		"data-path":    "data-path",
		"out-path":     "out-path",
		"tool":         "tool",
		"normalize":    "normalize",
		"sil-duration": "sil-duration",
		"min-freq":     "min-freq",
		"phone-map":    "phone-map",
		"speaker-list": "speaker-lists",
		"overwrite":    "overwrite",
		"quiet":        "quiet",
		"log-level":    "log-level",
		"feature-type": "feature.type",
		"channels":     "feature.channels",
		"sample-rate":  "feature.sample-rate",
		"window":       "feature.window",
		"slide":        "feature.slide",
		"energy":       "feature.energy",
		"delta":        "feature.delta",
		"deltadelta":   "feature.deltadelta",
	}
	for flag, key := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return errors.Wrapf(err, "bind --%s", flag)
		}
	}
	return nil
}

func newPrepareCmd(kind corpus.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   kind.String(),
		Short: fmt.Sprintf("Prepare vocabulary, labels and inputs for %s", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.New(configFile)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel, os.Stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, kind, cfg, log)
		},
	}
}

func run(ctx context.Context, kind corpus.Kind, cfg config.Config, log *logrus.Logger) error {
	var phones *lexicon.PhoneMap
	if cfg.PhoneMap != "" {
		m, err := lexicon.LoadPhoneMapFile(cfg.PhoneMap)
		if err != nil {
			return err
		}
		phones = m
	}
	r, err := reader.New(kind, reader.Options{
		Root:         cfg.DataPath,
		SpeakerLists: cfg.Partitions(),
		AudioExt:     cfg.AudioExt(),
		PhoneMap:     phones,
		Log:          log,
	})
	if err != nil {
		return err
	}
	loader, err := feature.NewLoader(cfg.Tool, cfg.Feature)
	if err != nil {
		return err
	}
	p, err := prepare.New(prepare.Options{
		OutPath:     cfg.OutPath,
		Scheme:      normalize.Scheme(cfg.Normalize),
		SilDuration: cfg.SilDuration,
		MinFreq:     cfg.MinFreq,
		Overwrite:   cfg.Overwrite,
		Quiet:       cfg.Quiet,
	}, r, loader, log)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"data":      cfg.DataPath,
		"out":       cfg.OutPath,
		"tool":      cfg.Tool,
		"normalize": cfg.Normalize,
	}).Info("preparing corpus")
	return p.Run(ctx)
}

func newCleanCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "clean <corpus>",
		Short: "Clean raw transcript lines from stdin to stdout",
		Long: "Reads one raw transcript per line from stdin and writes the cleaned\n" +
			"text. Lines the cleaner discards are written as empty lines.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := corpus.ParseKind(args[0])
			if err != nil {
				return err
			}
			c, err := cleaner.For(kind, corpus.LabelType(label))
			if err != nil {
				return err
			}
			return cleanLines(c, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&label, "label", string(corpus.LabelKana), "label type")
	return cmd
}

func cleanLines(c cleaner.Cleaner, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	w := bufio.NewWriter(out)
	for scanner.Scan() {
		fmt.Fprintln(w, c.Clean(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read stdin")
	}
	return w.Flush()
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}
