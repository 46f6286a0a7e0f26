package adapters

import "testing"

func TestSqliteDbqQueryBuilder_BuildCheckQuery(t *testing.T) {
	runQueryTests(t, NewSqliteDbqQueryBuilder(discardLogger()), []queryTestCase{
		{
			name:        "row_count without schema",
			expression:  "row_count > 0",
			table:       "customers",
			expectedSQL: `SELECT COUNT(*) FROM "customers"`,
		},
		{
			name:         "invalid_percent uses REGEXP",
			expression:   "invalid_percent(email) < 5%",
			config:       map[string]any{"valid regex": "@"},
			table:        "customers",
			expectedSQL:  `SELECT COUNT(*), SUM(CASE WHEN "email" NOT REGEXP ? THEN 1 ELSE 0 END) FROM "customers" WHERE "email" IS NOT NULL`,
			expectedArgs: []any{"@"},
		},
		{
			name:         "tolerance uses scalar max",
			expression:   "a = b",
			config:       map[string]any{"tolerance": "1%"},
			table:        "t",
			expectedSQL:  `SELECT COUNT(*) FROM "t" WHERE ABS((a) - (b)) * 1.0 / MAX(ABS(a), ABS(b), 1) > ?`,
			expectedArgs: []any{0.01},
		},
	})
}
