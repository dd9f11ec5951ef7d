package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ai-trip-planner/internal/view"
	"ai-trip-planner/internal/wizard"
)

var errAborted = errors.New("planning aborted")

// promptWizard walks the trip form on a line-oriented terminal. An empty
// answer keeps the current value.
func promptWizard(in io.Reader, out io.Writer, r *view.Renderer) (wizard.Request, error) {
	sc := bufio.NewScanner(in)
	w := wizard.New()

	readLine := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errAborted
		}
		return strings.TrimSpace(sc.Text()), nil
	}

	for {
		fmt.Fprintln(out)
		fmt.Fprint(out, r.WizardStep(w))

		for _, f := range wizard.StepFields(w.Step()) {
			if err := askField(w, f, out, readLine); err != nil {
				return wizard.Request{}, err
			}
		}

		fmt.Fprint(out, r.WizardStep(w))
		for {
			var prompt string
			if w.IsFinalStep() {
				prompt = "[s]ubmit, [b]ack, [e]dit, [q]uit: "
			} else {
				prompt = "[n]ext, [b]ack, [e]dit, [q]uit: "
			}
			action, err := readLine(prompt)
			if err != nil {
				return wizard.Request{}, err
			}

			switch strings.ToLower(action) {
			case "n", "next":
				if !w.IsFinalStep() && !w.Next() {
					fmt.Fprintln(out, "Destination, travelers and both dates are required before continuing.")
					continue
				}
			case "s", "submit":
				if req, ok := w.Submit(); ok {
					return req, nil
				}
				fmt.Fprintln(out, "The request is incomplete, go back and fill in the traveler profile.")
				continue
			case "b", "back":
				w.Previous()
			case "e", "edit":
			case "q", "quit":
				return wizard.Request{}, errAborted
			default:
				continue
			}
			break
		}
	}
}

func askField(w *wizard.Wizard, f wizard.Field, out io.Writer, readLine func(string) (string, error)) error {
	choices := wizard.Choices(f)
	if len(choices) > 0 && f != wizard.FieldTravelers {
		for i, c := range choices {
			fmt.Fprintf(out, "  %d) %s\n", i+1, c)
		}
	}

	for {
		prompt := wizard.FieldLabels[f]
		if cur := w.Value(f); cur != "" {
			prompt += " [" + cur + "]"
		}
		answer, err := readLine(prompt + ": ")
		if err != nil {
			return err
		}
		if answer == "" {
			return nil
		}
		if err := w.Set(f, pickChoices(choices, answer)); err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		return nil
	}
}

// pickChoices maps "1,3" style answers onto the option list. Anything else is
// taken literally.
func pickChoices(choices []string, answer string) string {
	if len(choices) == 0 {
		return answer
	}
	var picked []string
	for _, part := range strings.Split(answer, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(choices) {
			return answer
		}
		picked = append(picked, choices[n-1])
	}
	return strings.Join(picked, ", ")
}
