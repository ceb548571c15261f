package service

import (
	"context"
	"fmt"
	"time"

	"coursehub/internal/storage"
)

// AdminService hosts the operational endpoints: backend health probing
// and re-seeding backends from the fixture dataset.
type AdminService struct {
	resolver *storage.Resolver
}

func NewAdminService(resolver *storage.Resolver) *AdminService {
	return &AdminService{resolver: resolver}
}

type BackendReport struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Courses   int    `json:"courses"`
	Error     string `json:"error,omitempty"`
}

type StatusReport struct {
	Backends        []BackendReport         `json:"backends"`
	Observed        []storage.BackendStatus `json:"observed"`
	Recommendations []string                `json:"recommendations"`
	Overall         OverallStatus           `json:"overall"`
}

type OverallStatus struct {
	Healthy bool   `json:"healthy"`
	HasData bool   `json:"has_data"`
	Message string `json:"message"`
}

// DataStatus live-probes every configured backend and summarizes what
// an operator should do about it.
func (s *AdminService) DataStatus(ctx context.Context) *StatusReport {
	report := &StatusReport{Observed: s.resolver.Status()}

	anyAvailable := false
	hasData := false
	for _, b := range s.resolver.Backends() {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		br := BackendReport{Name: b.Name()}
		courses, err := b.ListCourses(probeCtx)
		cancel()
		if err != nil {
			br.Error = err.Error()
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("backend %q is unavailable: check its connection settings", b.Name()))
		} else {
			br.Available = true
			br.Courses = len(courses)
			anyAvailable = true
			if len(courses) > 0 {
				hasData = true
			} else {
				report.Recommendations = append(report.Recommendations,
					fmt.Sprintf("backend %q is reachable but empty: run a data migration", b.Name()))
			}
		}
		report.Backends = append(report.Backends, br)
	}

	if anyAvailable && hasData {
		report.Recommendations = append(report.Recommendations, "at least one backend is serving data")
	}
	report.Overall = OverallStatus{
		Healthy: anyAvailable,
		HasData: hasData,
	}
	if hasData {
		report.Overall.Message = "system operating normally"
	} else {
		report.Overall.Message = "configuration or data migration required"
	}
	return report
}

type MigrateResult struct {
	Success bool              `json:"success"`
	Results map[string]string `json:"results"`
}

// Migrate re-seeds the target backend(s) from the fixture dataset.
// target is a backend name or "all".
func (s *AdminService) Migrate(ctx context.Context, target string) *MigrateResult {
	ds := storage.Fixtures()
	out := &MigrateResult{Success: true, Results: map[string]string{}}

	matched := false
	for _, b := range s.resolver.Backends() {
		if target != "all" && target != "" && b.Name() != target {
			continue
		}
		matched = true
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := b.Seed(seedCtx, ds)
		cancel()
		if err != nil {
			out.Success = false
			out.Results[b.Name()] = "failed: " + err.Error()
		} else {
			out.Results[b.Name()] = "seeded"
		}
	}
	if !matched {
		out.Success = false
		out.Results[target] = "unknown backend"
	}
	return out
}
