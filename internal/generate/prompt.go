// Package generate consumes a language-model-backed schedule candidate
// generator. Its output is untrusted: callers must validate every candidate
// with the synthesizer's constraint predicate before acting on it.
package generate

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/weekly-planner/internal/grid"
	"github.com/example/weekly-planner/internal/synth"
)

// PromptContext carries everything the generator needs to propose a schedule.
type PromptContext struct {
	Tasks       []synth.Task
	Events      []synth.Event
	Week        grid.Window
	Constraints synth.Constraints
}

// BuildPrompt renders the scheduling request as natural language with an
// explicit JSON response contract.
func BuildPrompt(pc PromptContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I need a schedule for the week of %s with the following information:\n\n",
		pc.Week.Start.Format("January 2, 2006"))

	fmt.Fprintf(&b, "- All events happen between %s and %s.\n",
		pc.Constraints.WorkStart, pc.Constraints.WorkEnd)
	if len(pc.Constraints.ExcludedWeekdays) > 0 {
		names := make([]string, 0, len(pc.Constraints.ExcludedWeekdays))
		for _, day := range pc.Constraints.ExcludedWeekdays {
			names = append(names, day.String())
		}
		fmt.Fprintf(&b, "- Nothing should be planned for %s.\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "- There should be %d minutes at least between events.\n", pc.Constraints.MinGapMinutes)
	b.WriteString("- There are existing events that should not be overwritten.\n\n")

	for _, event := range pc.Events {
		fmt.Fprintf(&b, "- A %q event happens at %s til %s\n",
			event.Name,
			event.Start.Format(time.RFC3339),
			event.End.Format(time.RFC3339))
	}
	b.WriteString("\n")

	b.WriteString(`- Formatted like this: {"schedule": [{"name": "", "startTime": "YYYY-MM-DDTHH:mm:ssZ", "endTime": "startTime + duration as YYYY-MM-DDTHH:mm:ssZ", "durationMinutes": 15}]}` + "\n\n")

	for _, task := range pc.Tasks {
		fmt.Fprintf(&b, "- A %q task happens %d times for %d minutes.\n",
			task.Name, task.WeeklyFrequency, task.DurationMinutes)
	}

	return b.String()
}
