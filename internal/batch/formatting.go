package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// formatBatchResults formats a batch's pair results in the given format.
func formatBatchResults(pairs []PairResult, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(pairs)
	case "csv":
		return formatCSV(pairs)
	default: // text
		return formatText(pairs)
	}
}

// formatJSON formats results as JSON.
func formatJSON(pairs []PairResult) (string, error) {
	type pairJSON struct {
		Master string `json:"master"`
		Check  string `json:"check"`
		Error  string `json:"error,omitempty"`
		Result any    `json:"result,omitempty"`
	}

	out := struct {
		Pairs []pairJSON `json:"pairs"`
	}{Pairs: make([]pairJSON, len(pairs))}

	for i, p := range pairs {
		entry := pairJSON{Master: p.MasterPath, Check: p.CheckPath}
		if p.Err != nil {
			entry.Error = p.Err.Error()
		} else {
			entry.Result = p.Result
		}
		out.Pairs[i] = entry
	}

	bts, err := json.MarshalIndent(out, "", "  ")
	return string(bts), err
}

// formatCSV formats results as CSV, one row per comparison item.
func formatCSV(pairs []PairResult) (string, error) {
	var rows [][]string
	rows = append(rows, []string{
		"master", "check", "balloon", "feature", "status", "zone", "error",
	})

	for _, p := range pairs {
		if p.Err != nil {
			rows = append(rows, []string{p.MasterPath, p.CheckPath, "", "", "", "", p.Err.Error()})
			continue
		}
		if p.Result == nil || len(p.Result.Comparisons) == 0 {
			rows = append(rows, []string{p.MasterPath, p.CheckPath, "", "", "", "", ""})
			continue
		}
		for _, item := range p.Result.Comparisons {
			rows = append(rows, []string{
				p.MasterPath,
				p.CheckPath,
				strconv.Itoa(item.BalloonNumber),
				item.FeatureDescription,
				string(item.Status),
				item.Zone,
				"",
			})
		}
	}

	var output strings.Builder
	writer := csv.NewWriter(&output)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), nil
}

// formatText formats results as plain text, one summary line per pair.
func formatText(pairs []PairResult) (string, error) {
	var output strings.Builder
	for i, p := range pairs {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("# %s vs %s\n", p.MasterPath, p.CheckPath))
		if p.Err != nil {
			output.WriteString(fmt.Sprintf("error: %v\n", p.Err))
			continue
		}
		if p.Result == nil {
			continue
		}
		s := p.Result.Summary
		output.WriteString(fmt.Sprintf(
			"status=%s total=%d pass=%d fail=%d warning=%d deviation=%d missing=%d score=%.2f\n",
			s.Status, s.Total, s.Pass, s.Fail, s.Warning, s.Deviation, s.Missing, s.Score,
		))
	}
	return output.String(), nil
}
