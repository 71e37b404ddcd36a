package model

// Annotation is one contributor's transcription of a subject. The same shape
// carries raw, normalized and resolved records.
type Annotation struct {
	SubjectID string `json:"subject_ids" csv:"subject_ids"`
	Text      string `json:"annotations" csv:"annotations"`
}

// Resolution describes how a subject's annotations were collapsed to one.
// Pair indices and Chosen are positions within the subject's group, in input
// order. Singleton groups report -1 for the pair and 0 for Chosen.
type Resolution struct {
	SubjectID  string  `json:"subject_id" csv:"subject_id"`
	GroupSize  int     `json:"group_size" csv:"group_size"`
	BestScore  float64 `json:"best_score" csv:"best_score"`
	PairFirst  int     `json:"pair_first" csv:"pair_first"`
	PairSecond int     `json:"pair_second" csv:"pair_second"`
	Chosen     int     `json:"chosen" csv:"chosen"`
}

// Singleton reports whether the subject had a single annotation.
func (r Resolution) Singleton() bool {
	return r.GroupSize == 1
}
