package fleet

import "neurofleetx/internal/models"

// Grade buckets a vehicle by the average of its four component health
// percentages using the configured thresholds.
func (s *Store) Grade(v models.Vehicle) models.MaintenanceGrade {
	avg := v.Maintenance.AverageHealth()
	switch {
	case avg >= s.cfg.MaintenanceHealthyMin:
		return models.GradeHealthy
	case avg >= s.cfg.MaintenanceDueMin:
		return models.GradeDue
	default:
		return models.GradeCritical
	}
}

// GradeCount is one row of the fleet health summary
type GradeCount struct {
	Status models.MaintenanceGrade `json:"status"`
	Count  int                     `json:"count"`
}

// MaintenanceSummary counts vehicles per maintenance grade
func (s *Store) MaintenanceSummary() []GradeCount {
	counts := map[models.MaintenanceGrade]int{}
	for _, v := range s.Vehicles() {
		counts[s.Grade(v)]++
	}
	return []GradeCount{
		{Status: models.GradeHealthy, Count: counts[models.GradeHealthy]},
		{Status: models.GradeDue, Count: counts[models.GradeDue]},
		{Status: models.GradeCritical, Count: counts[models.GradeCritical]},
	}
}
