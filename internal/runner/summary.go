package runner

// Summarize aggregates run records per model. Failed runs count toward
// totals but are excluded from score statistics.
func Summarize(records []RunRecord) Summary {
	return buildSummary(records)
}

func buildSummary(records []RunRecord) Summary {
	summary := Summary{RunsTotal: len(records)}
	byModel := map[string]*ModelSummary{}
	order := make([]string, 0)

	for _, record := range records {
		model, ok := byModel[record.Model]
		if !ok {
			model = &ModelSummary{Model: record.Model}
			byModel[record.Model] = model
			order = append(order, record.Model)
		}
		model.Cases++
		if !record.Scored() {
			model.Failed++
			summary.RunsFailed++
			continue
		}
		model.Scored++
		summary.RunsScored++
		model.MeanScore += float64(record.Score.TotalScore)
		if record.Score.TotalScore == 100 {
			model.FullCredit++
		}
	}

	summary.Models = make([]ModelSummary, 0, len(order))
	for _, name := range order {
		model := byModel[name]
		if model.Scored > 0 {
			model.MeanScore /= float64(model.Scored)
		}
		summary.Models = append(summary.Models, *model)
	}
	return summary
}
