// Package xlog provides structured logging handler construction for use
// with [log/slog], shared by every cmd/ entry point in this module.
//
// It supports multiple output formats ([FormatJSON], [FormatLogfmt], and
// [FormatText]) and severity levels ([LevelError], [LevelWarn], [LevelInfo],
// and [LevelDebug]). Use [NewHandler] to create a handler directly, or use
// [Config] with CLI flag integration via [github.com/spf13/pflag] and shell
// completion support via [github.com/spf13/cobra].
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := xlog.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// [NewHandler] accepts any [io.Writer], so combine it with
// [io.MultiWriter] to write to multiple locations at once:
//
//	w := io.MultiWriter(os.Stderr, logFile)
//	handler := xlog.NewHandler(w, xlog.LevelInfo, xlog.FormatJSON)
//	logger := slog.New(handler)
package xlog
