package workflow

import "shootflow-backend/internal/models"

// ReconcileCounters recomputes the shoot-level aggregate counters from the
// true file set. It is a pure function of the files plus the shoot's expected
// counts, and must run inside the same atomic unit as whatever file mutation
// triggered it: other components read the counters directly, so stale values
// are a correctness bug, not a display concern.
func ReconcileCounters(s *models.Shoot, files []*models.MediaFile) {
	raw, edited := 0, 0
	for _, f := range files {
		switch f.Stage {
		case models.StageTodo:
			raw++
		case models.StageCompleted, models.StageVerified:
			edited++
		}
	}

	s.RawPhotoCount = raw
	s.EditedPhotoCount = edited
	s.RawMissingCount = max(0, s.ExpectedRawCount-raw)
	s.EditedMissingCount = max(0, s.ExpectedFinalCount-edited)
	s.MissingRaw = s.RawMissingCount > 0
	s.MissingFinal = s.EditedMissingCount > 0
}
