package models

import "encoding/json"

// Judge responses are free-form JSON from a language model, so each judge's
// slot in the result is a tagged union rather than an open dictionary:
// a verdict on success, an error stub when the call or parse failed, or a
// skip stub when the judge's prerequisite input was absent. The stubs keep
// the wire shapes {"error": ..., "score": 0} and {"score": 0, "skipped": ...}.

type errorStub struct {
	Error string  `json:"error"`
	Score float64 `json:"score"`
}

type skipStub struct {
	Score   float64 `json:"score"`
	Skipped string  `json:"skipped"`
}

type resultProbe struct {
	Error   string `json:"error"`
	Skipped string `json:"skipped"`
}

// FactualResult is the factual-completeness judge's slot. Exactly one of
// Verdict and Err is set.
type FactualResult struct {
	Verdict *FactualVerdict
	Err     string
}

// Score returns the verdict score, or 0 for a failed judge.
func (r FactualResult) Score() float64 {
	if r.Verdict == nil {
		return 0
	}
	return r.Verdict.Score
}

func (r FactualResult) MarshalJSON() ([]byte, error) {
	if r.Verdict != nil {
		return json.Marshal(r.Verdict)
	}
	return json.Marshal(errorStub{Error: r.Err})
}

func (r *FactualResult) UnmarshalJSON(data []byte) error {
	var probe resultProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != "" {
		*r = FactualResult{Err: probe.Error}
		return nil
	}
	var verdict FactualVerdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return err
	}
	*r = FactualResult{Verdict: &verdict}
	return nil
}

// QualityResult is the quality judge's slot. Exactly one of Verdict and Err
// is set.
type QualityResult struct {
	Verdict *QualityVerdict
	Err     string
}

// Score returns the verdict score on the 1-4 rubric scale, or 0 for a failed
// judge.
func (r QualityResult) Score() float64 {
	if r.Verdict == nil {
		return 0
	}
	return r.Verdict.Score
}

func (r QualityResult) MarshalJSON() ([]byte, error) {
	if r.Verdict != nil {
		return json.Marshal(r.Verdict)
	}
	return json.Marshal(errorStub{Error: r.Err})
}

func (r *QualityResult) UnmarshalJSON(data []byte) error {
	var probe resultProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != "" {
		*r = QualityResult{Err: probe.Error}
		return nil
	}
	var verdict QualityVerdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return err
	}
	*r = QualityResult{Verdict: &verdict}
	return nil
}

// ConsistencyResult is the parsing-consistency judge's slot. At most one of
// Verdict, Err and Skipped is set; Skipped records why the judge never ran.
type ConsistencyResult struct {
	Verdict *ConsistencyVerdict
	Err     string
	Skipped string
}

// Score returns the verdict score, or 0 for a failed or skipped judge.
func (r ConsistencyResult) Score() float64 {
	if r.Verdict == nil {
		return 0
	}
	return r.Verdict.Score
}

func (r ConsistencyResult) MarshalJSON() ([]byte, error) {
	if r.Verdict != nil {
		return json.Marshal(r.Verdict)
	}
	if r.Skipped != "" {
		return json.Marshal(skipStub{Skipped: r.Skipped})
	}
	return json.Marshal(errorStub{Error: r.Err})
}

func (r *ConsistencyResult) UnmarshalJSON(data []byte) error {
	var probe resultProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != "" {
		*r = ConsistencyResult{Err: probe.Error}
		return nil
	}
	if probe.Skipped != "" {
		*r = ConsistencyResult{Skipped: probe.Skipped}
		return nil
	}
	var verdict ConsistencyVerdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return err
	}
	*r = ConsistencyResult{Verdict: &verdict}
	return nil
}
