package booking

// Merge folds one extraction pass into the prior draft. A field is replaced
// only when the extraction explicitly supplies a non-empty value; otherwise
// the previous value is kept. Status is never taken from an extraction: it
// is computed by the negotiator on terminal transitions only.
//
// End time is never inferred from start time. If an extraction echoes the
// start time it supplies into end_time, the end_time is dropped as an
// extractor artifact; a genuinely equal pair would be a zero-length slot,
// which ValidateSlot rejects anyway.
func Merge(prev Draft, extracted PartialFields) Draft {
	out := prev

	if extracted.UserID != "" {
		out.UserID = extracted.UserID
	}
	if extracted.Date != "" {
		out.Date = extracted.Date
	}
	if extracted.StartTime != "" {
		out.StartTime = extracted.StartTime
	}
	if extracted.EndTime != "" {
		echoed := extracted.StartTime != "" && extracted.EndTime == extracted.StartTime
		if !echoed {
			out.EndTime = extracted.EndTime
		}
	}

	return out
}
