package caseview

import (
	"slices"

	"github.com/evidenx/evidenx/internal/models"
)

// minCompareAudio is the number of selected audio recordings needed to compare witness statements.
const minCompareAudio = 2

// Selection is the ordered set of evidence IDs picked on the case details page.
type Selection []string

// Toggle adds the id when it is not selected and removes it otherwise.
func (s Selection) Toggle(id string) Selection {
	if i := slices.Index(s, id); i >= 0 {
		return slices.Delete(slices.Clone(s), i, i+1)
	}
	return append(slices.Clone(s), id)
}

func (s Selection) Contains(id string) bool {
	return slices.Contains(s, id)
}

// AudioIDs returns the selected IDs that refer to audio evidence in selection order. Unknown IDs are ignored.
func (s Selection) AudioIDs(evidence []models.Evidence) []string {
	var ids []string
	for _, e := range s.audio(evidence) {
		ids = append(ids, e.ID)
	}
	return ids
}

// AudioNames returns the names of the selected audio evidence in selection order.
func (s Selection) AudioNames(evidence []models.Evidence) []string {
	var names []string
	for _, e := range s.audio(evidence) {
		names = append(names, e.Name)
	}
	return names
}

// CanCompare reports whether enough audio recordings are selected for a witness comparison.
func (s Selection) CanCompare(evidence []models.Evidence) bool {
	return len(s.audio(evidence)) >= minCompareAudio
}

func (s Selection) audio(evidence []models.Evidence) []models.Evidence {
	var selected []models.Evidence
	for _, id := range s {
		i := slices.IndexFunc(evidence, func(e models.Evidence) bool { return e.ID == id })
		if i >= 0 && evidence[i].IsAudio() {
			selected = append(selected, evidence[i])
		}
	}
	return selected
}
