package service

import (
	"VaultKeeper/internal/model"
	"VaultKeeper/internal/repo"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ReuseDetector ищет записи владельца с тем же паролем.
// Каждый вызов расшифровывает все записи владельца: O(n) операций Decrypt.
type ReuseDetector struct {
	repo   repo.VaultRepository
	cipher secretCipher
	logger *zap.SugaredLogger
}

func NewReuseDetector(r repo.VaultRepository, c secretCipher, logger *zap.SugaredLogger) *ReuseDetector {
	return &ReuseDetector{repo: r, cipher: c, logger: logger}
}

// CheckReused сравнивает candidate с паролем каждой записи владельца, кроме excludeID.
// Сравнение точное, без нормализации. Запись, которую не удалось расшифровать,
// пропускается с предупреждением в логе и не прерывает проверку.
func (d *ReuseDetector) CheckReused(ctx context.Context, ownerID int64, candidate string, excludeID string) (ReuseResult, error) {
	entries, err := d.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return ReuseResult{}, fmt.Errorf("list vault entries: %w", err)
	}

	res := ReuseResult{UsedIn: []model.ReuseRef{}}
	for i := range entries {
		e := &entries[i]
		if e.ID == excludeID || e.OwnerID != ownerID {
			continue
		}
		plain, err := d.cipher.Decrypt(e.Secret)
		if err != nil {
			d.logger.Warnw("reuse check: skipping entry that failed to decrypt",
				"owner_id", ownerID, "entry_id", e.ID, "error", err)
			continue
		}
		if plain == candidate {
			res.UsedIn = append(res.UsedIn, model.ReuseRef{Website: e.Website, Username: e.Username})
		}
	}
	res.IsReused = len(res.UsedIn) > 0
	return res, nil
}

// Scan считает повторы сразу для всего хранилища: каждая запись расшифровывается один раз.
// Возвращает для каждого id список других записей с тем же паролем.
func (d *ReuseDetector) Scan(ctx context.Context, ownerID int64) (map[string][]model.ReuseRef, error) {
	entries, err := d.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list vault entries: %w", err)
	}
	usage, _ := d.scanEntries(ownerID, entries)
	return usage, nil
}

// scanEntries возвращает повторы и расшифрованные пароли (только для успешно расшифрованных записей).
func (d *ReuseDetector) scanEntries(ownerID int64, entries []model.VaultEntry) (map[string][]model.ReuseRef, map[string]string) {
	plains := make(map[string]string, len(entries))
	groups := make(map[string][]int)
	for i := range entries {
		e := &entries[i]
		if e.OwnerID != ownerID {
			continue
		}
		plain, err := d.cipher.Decrypt(e.Secret)
		if err != nil {
			d.logger.Warnw("reuse scan: skipping entry that failed to decrypt",
				"owner_id", ownerID, "entry_id", e.ID, "error", err)
			continue
		}
		plains[e.ID] = plain
		groups[plain] = append(groups[plain], i)
	}

	usage := make(map[string][]model.ReuseRef, len(plains))
	for id := range plains {
		usage[id] = []model.ReuseRef{}
	}
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			refs := make([]model.ReuseRef, 0, len(idx)-1)
			for _, j := range idx {
				if j == i {
					continue
				}
				refs = append(refs, model.ReuseRef{Website: entries[j].Website, Username: entries[j].Username})
			}
			usage[entries[i].ID] = refs
		}
	}
	return usage, plains
}
