package adapters

import "testing"

func TestClickhouseDbqQueryBuilder_BuildCheckQuery(t *testing.T) {
	runQueryTests(t, NewClickhouseDbqQueryBuilder(discardLogger()), []queryTestCase{
		{
			name:        "row_count",
			expression:  "row_count > 0",
			schema:      "analytics",
			table:       "events",
			expectedSQL: "SELECT COUNT(*) FROM `analytics`.`events`",
		},
		{
			name:         "invalid_percent uses match",
			expression:   "invalid_percent(user_id) < 0.5%",
			config:       map[string]any{"valid regex": `^\d+$`},
			schema:       "analytics",
			table:        "events",
			expectedSQL:  "SELECT COUNT(*), SUM(CASE WHEN NOT match(toString(`user_id`), ?) THEN 1 ELSE 0 END) FROM `analytics`.`events` WHERE `user_id` IS NOT NULL",
			expectedArgs: []any{`^\d+$`},
		},
		{
			name:        "avg_row",
			expression:  "avg_row(duration_ms) < 500",
			schema:      "analytics",
			table:       "events",
			expectedSQL: "SELECT AVG(`duration_ms`) FROM `analytics`.`events`",
		},
		{
			name:         "tolerance nests greatest",
			expression:   "revenue = units * price",
			config:       map[string]any{"tolerance": "2%"},
			schema:       "analytics",
			table:        "sales",
			expectedSQL:  "SELECT COUNT(*) FROM `analytics`.`sales` WHERE ABS((revenue) - (units * price)) * 1.0 / greatest(greatest(ABS(revenue), ABS(units * price)), 1) > ?",
			expectedArgs: []any{0.02},
		},
	})
}
