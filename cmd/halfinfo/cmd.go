// Command halfinfo inspects the 16-bit floating-point formats: their
// limits, the value of storage patterns, the pattern of decimal numbers,
// and an exhaustive self-check of the codecs.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	half "github.com/shawwn/numpy-half"
	"github.com/shawwn/numpy-half/dtype"
	"github.com/shawwn/numpy-half/envconfig"
	"github.com/shawwn/numpy-half/internal/binary16"
)

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI returns the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "halfinfo",
		Short:         "Inspect the bfloat16 and xfloat16 formats",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: envconfig.LogLevel()})))
		},
	}

	finfoCmd := &cobra.Command{
		Use:   "finfo [format...]",
		Short: "Show the numeric limits of each format",
		Args:  cobra.ArbitraryArgs,
		RunE:  FinfoHandler,
	}

	decodeCmd := &cobra.Command{
		Use:   "decode FORMAT BITS...",
		Short: "Show the value of storage patterns given in hex",
		Args:  cobra.MinimumNArgs(2),
		RunE:  DecodeHandler,
	}

	encodeCmd := &cobra.Command{
		Use:   "encode FORMAT NUMBER...",
		Short: "Show the storage pattern nearest to decimal numbers",
		Args:  cobra.MinimumNArgs(2),
		RunE:  EncodeHandler,
	}

	verifyCmd := &cobra.Command{
		Use:   "verify [format...]",
		Short: "Check every storage pattern of each format",
		Args:  cobra.ArbitraryArgs,
		RunE:  VerifyHandler,
	}

	envVars := envconfig.AsMap()
	for _, cmd := range []*cobra.Command{finfoCmd, decodeCmd, encodeCmd, verifyCmd} {
		appendEnvDocs(cmd, []envconfig.EnvVar{envVars["HALF_DEBUG"], envVars["HALF_BYTEORDER_ALIASES"]})
	}

	rootCmd.AddCommand(finfoCmd, decodeCmd, encodeCmd, verifyCmd)
	return rootCmd
}

func parseFormats(args []string) ([]half.Format, error) {
	if len(args) == 0 {
		return half.Formats, nil
	}
	formats := make([]half.Format, 0, len(args))
	for _, arg := range args {
		f, err := half.ParseFormat(arg)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoFormatHeaders(false)
	return table
}

// FinfoHandler prints one column of limits per format.
func FinfoHandler(cmd *cobra.Command, args []string) error {
	formats, err := parseFormats(args)
	if err != nil {
		return err
	}

	rows := []string{
		"bits", "precision", "resolution", "eps", "epsneg", "max", "min", "tiny",
		"smallest_subnormal", "machep", "negep", "minexp", "maxexp", "nexp", "nmant",
	}
	header := []string{"FIELD"}
	for _, f := range formats {
		header = append(header, f.String())
	}

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := []string{row}
		for _, f := range formats {
			line = append(line, fmt.Sprintf("%v", f.Finfo().Fields()[row]))
		}
		data = append(data, line)
	}

	table := newTable(cmd.OutOrStdout(), header)
	table.AppendBulk(data)
	table.Render()
	return nil
}

func parseBits(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid storage pattern %q: %w", s, err)
	}
	return uint16(v), nil
}

// DecodeHandler prints the value of each storage pattern. Values are
// computed through the registered float64 cast.
func DecodeHandler(cmd *cobra.Command, args []string) error {
	f, err := half.ParseFormat(args[0])
	if err != nil {
		return err
	}
	r := half.Default()
	t, ok := r.Lookup(f.String())
	if !ok {
		return fmt.Errorf("%s is not registered", f)
	}

	bits := make([]uint16, 0, len(args)-1)
	for _, arg := range args[1:] {
		v, err := parseBits(arg)
		if err != nil {
			return err
		}
		bits = append(bits, v)
	}

	values := make([]float64, len(bits))
	if err := r.Cast(t, dtype.Float64, bits, values); err != nil {
		return err
	}

	data := make([][]string, 0, len(bits))
	for i, v := range bits {
		data = append(data, []string{
			fmt.Sprintf("0x%04x", v),
			f.Text(v),
			f.Layout().Classify(v).String(),
			strconv.FormatFloat(values[i], 'g', -1, 64),
		})
	}

	table := newTable(cmd.OutOrStdout(), []string{"BITS", "VALUE", "CLASS", "EXACT"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

// EncodeHandler prints the storage pattern nearest to each number.
func EncodeHandler(cmd *cobra.Command, args []string) error {
	f, err := half.ParseFormat(args[0])
	if err != nil {
		return err
	}

	data := make([][]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		v, err := f.Parse(arg)
		var note string
		switch {
		case errors.Is(err, strconv.ErrRange):
			note = "overflow"
		case err != nil:
			return err
		case f.Layout().Classify(v) == binary16.Zero && !isZero(arg):
			note = "underflow"
		case f.Layout().Classify(v) == binary16.Subnormal:
			note = "subnormal"
		}
		data = append(data, []string{arg, fmt.Sprintf("0x%04x", v), f.Text(v), note})
	}

	table := newTable(cmd.OutOrStdout(), []string{"INPUT", "BITS", "VALUE", "NOTE"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

func isZero(s string) bool {
	x, err := strconv.ParseFloat(s, 64)
	return err == nil && x == 0
}

// VerifyHandler checks every pattern of each format concurrently.
func VerifyHandler(cmd *cobra.Command, args []string) error {
	formats, err := parseFormats(args)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, f := range formats {
		g.Go(func() error {
			if err := verify(f, ctx.Err); err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			slog.Debug("verified", "format", f, "patterns", 1<<16)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range formats {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d patterns)\n", f, 1<<16)
	}
	return nil
}

// verify checks that every non-NaN pattern of f survives decoding,
// encoding and text formatting, and that decoding is monotonic over the
// positive patterns.
func verify(f half.Format, canceled func() error) error {
	l := f.Layout()
	prev := math.Inf(-1)
	for i := 0; i < 1<<16; i++ {
		if i%4096 == 0 {
			if err := canceled(); err != nil {
				return err
			}
		}
		v := uint16(i)
		x := f.Decode(v)
		if l.IsNaN(v) {
			if !math.IsNaN(x) {
				return fmt.Errorf("0x%04x: NaN pattern decodes to %v", v, x)
			}
			continue
		}
		if got := f.Encode(x); got != v {
			return fmt.Errorf("0x%04x: decodes to %v, which encodes to 0x%04x", v, x, got)
		}
		if got, err := f.Parse(f.Text(v)); err != nil || got != v {
			return fmt.Errorf("0x%04x: text %q parses to 0x%04x (%v)", v, f.Text(v), got, err)
		}
		if v&binary16.SignMask == 0 {
			if x <= prev {
				return fmt.Errorf("0x%04x: %v does not exceed the previous pattern's %v", v, x, prev)
			}
			prev = x
		}
	}
	return nil
}
