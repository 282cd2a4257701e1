package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mintlabs/mint-backend/internal/models"
)

// printMessage writes a confirmation text.
func printMessage(w io.Writer, format, msg string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

func printUsers(w io.Writer, format string, users []models.UserRow) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(users)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	return tw.Flush()
}

func printSamples(w io.Writer, format string, samples []models.SampleRow) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(samples)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIMESTAMP\tVALUE\tMETADATA")
	for _, s := range samples {
		fmt.Fprintf(tw, "%d\t%s\t%g\t%s\n", s.ID, s.Timestamp, s.Value, s.Metadata)
	}
	return tw.Flush()
}
