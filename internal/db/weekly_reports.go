package db

import "context"

// CreateWeeklyReportParams holds the arguments for CreateWeeklyReport.
type CreateWeeklyReportParams struct {
	ID          string
	UserID      string
	WeekStart   string
	ReportText  string
	GeneratedAt string
}

// CreateWeeklyReport inserts a new report row.
func (q *Queries) CreateWeeklyReport(ctx context.Context, arg CreateWeeklyReportParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO weekly_reports (id, user_id, week_start, report_text, generated_at) VALUES (?, ?, ?, ?, ?)",
		arg.ID, arg.UserID, arg.WeekStart, arg.ReportText, arg.GeneratedAt,
	)
	return err
}

const selectWeeklyReport = `
SELECT id, user_id, week_start, report_text, generated_at
FROM weekly_reports WHERE user_id = ? AND week_start = ?
`

// GetWeeklyReport fetches a user's report for one week. Returns
// sql.ErrNoRows if it has not been generated yet.
func (q *Queries) GetWeeklyReport(ctx context.Context, userID, weekStart string) (WeeklyReport, error) {
	var r WeeklyReport
	err := q.db.QueryRowContext(ctx, selectWeeklyReport, userID, weekStart).Scan(
		&r.ID, &r.UserID, &r.WeekStart, &r.ReportText, &r.GeneratedAt,
	)
	return r, err
}

// DeleteWeeklyReport removes a user's report for one week, used by the
// regenerate path, which then generates and stores a fresh report at once.
func (q *Queries) DeleteWeeklyReport(ctx context.Context, userID, weekStart string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM weekly_reports WHERE user_id = ? AND week_start = ?", userID, weekStart)
	return err
}

// ReattributeWeeklyReports moves every report row owned by fromUserID to
// toUserID. A collision on (user_id, week_start) is resolved in favor of
// toUserID's existing report, since it reflects whatever that account
// already saw.
func (q *Queries) ReattributeWeeklyReports(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE weekly_reports SET user_id = ?
		WHERE user_id = ? AND week_start NOT IN (
			SELECT week_start FROM weekly_reports WHERE user_id = ?
		)
	`, toUserID, fromUserID, toUserID)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return rows, err
	}
	if _, err := q.db.ExecContext(ctx, "DELETE FROM weekly_reports WHERE user_id = ?", fromUserID); err != nil {
		return rows, err
	}
	return rows, nil
}
