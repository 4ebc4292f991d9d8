// Package backup creates timestamped snapshots of the SQLite database and
// prunes old ones.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Run snapshots the live database into dir using VACUUM INTO, which is safe
// against concurrent writers, then prunes the directory down to keep
// snapshots. With keep <= 0 nothing is pruned. Returns the snapshot path.
func Run(ctx context.Context, db *sql.DB, dir string, keep int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	path, err := snapshotPath(dir, time.Now())
	if err != nil {
		return "", err
	}

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	slog.Info("database snapshot written", "path", path)

	if keep > 0 {
		if err := Prune(dir, keep); err != nil {
			return path, err
		}
	}
	return path, nil
}

// snapshotPath picks an unused timestamped filename in dir.
func snapshotPath(dir string, now time.Time) (string, error) {
	base := "warehouse-" + now.Format("20060102-150405")
	for i := 0; i < 100; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		path := filepath.Join(dir, name+".db")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("checking snapshot path: %w", err)
		}
	}
	return "", fmt.Errorf("no free snapshot name under %s", dir)
}

// Prune deletes the oldest snapshots in dir, by modification time, keeping
// the newest keep of them.
func Prune(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading backup directory: %w", err)
	}

	type snapshot struct {
		path    string
		modTime time.Time
	}
	var snapshots []snapshot
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("reading snapshot info: %w", err)
		}
		snapshots = append(snapshots, snapshot{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	if len(snapshots) <= keep {
		return nil
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].modTime.After(snapshots[j].modTime)
	})
	for _, s := range snapshots[keep:] {
		if err := os.Remove(s.path); err != nil {
			return fmt.Errorf("removing old snapshot: %w", err)
		}
		slog.Info("old snapshot removed", "path", s.path)
	}
	return nil
}
