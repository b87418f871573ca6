package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"anan/internal/lang"
	"anan/internal/ruby"
	"anan/internal/termview"
	"anan/internal/textseg"
)

var (
	splitLang string
	splitJSON bool
)

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <text|@file>",
		Short: "Show how a text is weighted, tokenized and split into sentences",
		Args:  cobra.ExactArgs(1),
		RunE:  runSplitCmd,
	}
	cmd.Flags().StringVar(&splitLang, "lang", "zh", "text language: zh, en or ja")
	cmd.Flags().BoolVar(&splitJSON, "json", false, "print JSON")
	return cmd
}

type splitReport struct {
	Language  lang.Language   `json:"language"`
	Text      string          `json:"text"`
	Length    int             `json:"length"`
	Weights   []float64       `json:"weights,omitempty"`
	Total     float64         `json:"total,omitempty"`
	Tokens    []textseg.Token `json:"tokens,omitempty"`
	Sentences []string        `json:"sentences"`
	Ruby      []ruby.Segment  `json:"ruby,omitempty"`
}

func runSplitCmd(cmd *cobra.Command, args []string) error {
	l, err := lang.Parse(splitLang)
	if err != nil {
		return err
	}
	text, err := readText(args[0])
	if err != nil {
		return err
	}

	report := buildSplitReport(text, l)
	out := cmd.OutOrStdout()
	if splitJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printSplitReport(out, report)
	return nil
}

func buildSplitReport(text string, l lang.Language) splitReport {
	report := splitReport{Language: l}
	var segments []ruby.Segment
	switch l {
	case lang.Japanese:
		segments = ruby.ParseFurigana(text)
		text = ruby.Plain(segments)
	case lang.Chinese:
		segments = ruby.Bopomofo(text)
	}

	u := textseg.NewTokenizer(cfg.Weights, 1).Tokenize(text, l)
	report.Text = u.Text
	report.Length = u.Len()
	report.Tokens = u.Tokens
	report.Sentences = u.Sentences
	report.Ruby = segments
	if u.UsesWeights() {
		report.Weights = u.Weights.Weights
		report.Total = u.Weights.Total
	}
	return report
}

func printSplitReport(w io.Writer, r splitReport) {
	fmt.Fprintf(w, "language: %s  chars: %d\n", r.Language, r.Length)
	if r.Weights != nil {
		fmt.Fprintf(w, "weights (total %.2f):\n", r.Total)
		for i, ch := range []rune(r.Text) {
			fmt.Fprintf(w, "  %3d  %s%s  %.2f\n", i, string(ch), strings.Repeat(" ", 3-termview.Width(string(ch))), r.Weights[i])
		}
	}
	if r.Tokens != nil {
		fmt.Fprintln(w, "tokens:")
		for _, t := range r.Tokens {
			kind := "fill"
			if t.IsWord {
				kind = "word"
			}
			fmt.Fprintf(w, "  %3d  %-4s [%d,%d)  %q\n", t.ID, kind, t.Start, t.End(), t.Text)
		}
	}
	fmt.Fprintln(w, "sentences:")
	for i, s := range r.Sentences {
		fmt.Fprintf(w, "  %d  %s\n", i, s)
	}
	if r.Ruby != nil {
		var b strings.Builder
		for _, seg := range r.Ruby {
			if seg.Ruby != "" {
				fmt.Fprintf(&b, "%s(%s)", seg.Base, seg.Ruby)
			} else {
				b.WriteString(seg.Base)
			}
		}
		fmt.Fprintf(w, "ruby: %s\n", b.String())
	}
}
