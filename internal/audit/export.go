package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/glossworks/glossworks/internal/rbac"
)

// exportPageSize keeps export queries bounded while walking the trail.
const exportPageSize = 500

// ExportCSV renders the full filtered audit trail as CSV. Staff only.
func (s *Service) ExportCSV(ctx context.Context, userID, orgID int64, filters TimelineFilters) ([]byte, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"at", "actor_id", "action", "entity", "entity_id", "meta"}); err != nil {
		return nil, err
	}

	offset := 0
	for {
		rows, err := s.repo.Timeline(ctx, orgID, filters, exportPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			meta := ""
			if len(row.Meta) > 0 {
				raw, err := json.Marshal(row.Meta)
				if err != nil {
					return nil, err
				}
				meta = string(raw)
			}
			record := []string{
				row.At.Format(time.RFC3339),
				strconv.FormatInt(row.ActorID, 10),
				row.Action,
				row.Entity,
				row.EntityID,
				meta,
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
		if len(rows) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
