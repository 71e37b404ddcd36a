package dedupe

import "github.com/sells-group/transcribe-cli/internal/model"

// Group holds every annotation submitted for one subject, in input order.
type Group struct {
	SubjectID string
	Texts     []string
}

// GroupBySubject partitions records by subject id. Groups are returned in
// the order their subject id first appears; an empty subject id is a key
// like any other.
func GroupBySubject(records []model.Annotation) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		i, ok := index[r.SubjectID]
		if !ok {
			i = len(groups)
			index[r.SubjectID] = i
			groups = append(groups, Group{SubjectID: r.SubjectID})
		}
		groups[i].Texts = append(groups[i].Texts, r.Text)
	}
	return groups
}
