/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Seednode/petitbac/game"
	"github.com/spf13/cobra"
)

type soloOptions struct {
	name       string
	rounds     int
	duration   int
	categories []string
}

func newSoloCmd() *cobra.Command {
	opts := &soloOptions{}

	cmd := &cobra.Command{
		Use:           "solo",
		Short:         "Play a game in the terminal, no server required.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSolo(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	fs := cmd.Flags()

	fs.StringVar(&opts.name, "name", "Player", "player name shown on the scoreboard")
	fs.IntVar(&opts.rounds, "rounds", 5, "number of rounds to play")
	fs.IntVar(&opts.duration, "duration", 180, "suggested seconds per round (not enforced in the terminal)")
	fs.StringSliceVar(&opts.categories, "categories", game.DefaultSettings().Categories, "categories to fill each round")

	return cmd
}

// runSolo drives a whole single-player game through the same state
// machine and scoring engine the multiplayer coordinator uses.
func runSolo(in io.Reader, out io.Writer, opts *soloOptions) error {
	settings := game.Settings{
		TotalRounds:   opts.rounds,
		RoundDuration: opts.duration,
		Categories:    opts.categories,
	}

	solo := game.NewSolo(opts.name, settings)
	if err := solo.Start(); err != nil {
		return err
	}

	fmt.Fprintf(out, "petitbac — %d round(s), one word per category. Blank answers score nothing.\n", opts.rounds)

	scanner := bufio.NewScanner(in)
	eof := false

	for {
		doc := solo.Document()
		fmt.Fprintf(out, "\nRound %d of %d — words starting with %q\n", doc.CurrentRound, doc.Settings.TotalRounds, doc.CurrentLetter)

		answers := game.Answers{}
		for _, category := range doc.Settings.Categories {
			fmt.Fprintf(out, "%s: ", category)
			if !scanner.Scan() {
				eof = true
				fmt.Fprintln(out)
				break
			}
			answers[category] = scanner.Text()
		}

		if err := solo.Submit(answers); err != nil {
			return err
		}

		score, err := solo.FinishRound()
		if err != nil {
			return err
		}

		for _, result := range score.Categories {
			switch {
			case result.Word == "":
				fmt.Fprintf(out, "  %s: (no answer)\n", result.Category)
			case result.Unique:
				fmt.Fprintf(out, "  %s: %s — %d pts\n", result.Category, result.Word, result.Points)
			default:
				fmt.Fprintf(out, "  %s: %s — %d pt\n", result.Category, result.Word, result.Points)
			}
		}

		total := solo.Document().Players[0].TotalScore
		fmt.Fprintf(out, "Round score: %d (running total %d)\n", score.Total, total)

		if err := solo.NextRound(); err != nil {
			return err
		}

		if solo.Finished() || eof {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	final := solo.Document()
	fmt.Fprintf(out, "\n%s\nFinal score for %s: %d\n", strings.Repeat("-", 32), opts.name, final.Players[0].TotalScore)

	return nil
}
