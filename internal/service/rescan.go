package service

import (
	"VaultKeeper/internal/audit"
	"VaultKeeper/internal/security"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// rescanWorkers ограничивает число одновременных запросов к оракулам.
const rescanWorkers = 4

// RescanReport: итог пересканирования хранилища владельца.
type RescanReport struct {
	Scanned     int `json:"scanned"`
	Compromised int `json:"compromised"`
	Reused      int `json:"reused"`
	UnsafeURLs  int `json:"unsafe_urls"`
	Failed      int `json:"failed"`
}

type rescanResult struct {
	breach security.BreachResult
	url    *security.URLResult
}

// Rescan заново проверяет все записи владельца: утечки, безопасность URL и повторы.
// Записи, которые не удалось расшифровать или сохранить, пропускаются и попадают в Failed.
// Отмена контекста прерывает пересканирование до записи в БД.
func (s *VaultService) Rescan(ctx context.Context, ownerID int64) (RescanReport, error) {
	entries, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return RescanReport{}, fmt.Errorf("list vault entries: %w", err)
	}

	usage, plains := s.reuse.scanEntries(ownerID, entries)

	results := make([]rescanResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rescanWorkers)
	for i := range entries {
		e := &entries[i]
		plain, ok := plains[e.ID]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := rescanResult{breach: s.tracker.CheckPassword(gctx, plain)}
			if e.URL != nil {
				u := s.tracker.CheckURL(gctx, *e.URL)
				r.url = &u
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RescanReport{}, fmt.Errorf("rescan: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return RescanReport{}, fmt.Errorf("rescan: %w", err)
	}

	now := s.now()
	var report RescanReport
	for i := range entries {
		e := entries[i]
		if _, ok := plains[e.ID]; !ok {
			report.Failed++
			continue
		}
		r := results[i]
		e.IsCompromised = r.breach.IsCompromised
		e.BreachCount = r.breach.BreachCount
		e.ReusedIn = usage[e.ID]
		e.IsReused = len(e.ReusedIn) > 0
		columns := []string{"is_compromised", "breach_count", "is_reused", "reused_in", "last_scanned"}
		if r.url != nil {
			e.IsURLUnsafe = !r.url.IsSafe
			e.URLThreatTypes = r.url.ThreatTypes
			columns = append(columns, "is_url_unsafe", "url_threat_types")
		}
		e.LastScanned = &now

		if err := s.repo.Update(ctx, &e, columns); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, fmt.Errorf("rescan: %w", err)
			}
			s.logger.Warnw("rescan: failed to store security status",
				"owner_id", ownerID, "entry_id", e.ID, "error", err)
			report.Failed++
			continue
		}

		report.Scanned++
		if e.IsCompromised {
			report.Compromised++
		}
		if e.IsReused {
			report.Reused++
		}
		if e.IsURLUnsafe {
			report.UnsafeURLs++
		}
	}

	level := audit.LevelInfo
	if report.Failed > 0 {
		level = audit.LevelWarn
	}
	s.audit.Record(ctx, level, "vault rescanned", ownerID, map[string]any{
		"scanned":     report.Scanned,
		"compromised": report.Compromised,
		"reused":      report.Reused,
		"unsafe_urls": report.UnsafeURLs,
		"failed":      report.Failed,
	})
	return report, nil
}
