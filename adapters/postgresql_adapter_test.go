package adapters

import "testing"

func TestPostgresqlDbqQueryBuilder_BuildCheckQuery(t *testing.T) {
	runQueryTests(t, NewPostgresqlDbqQueryBuilder(discardLogger()), []queryTestCase{
		{
			name:        "row_count",
			expression:  "row_count > 0",
			schema:      "public",
			table:       "customers",
			expectedSQL: `SELECT COUNT(*) FROM "public"."customers"`,
		},
		{
			name:        "row_count without schema",
			expression:  "row_count > 0",
			table:       "customers",
			expectedSQL: `SELECT COUNT(*) FROM "customers"`,
		},
		{
			name:        "missing_count",
			expression:  "missing_count(email) = 0",
			schema:      "public",
			table:       "customers",
			expectedSQL: `SELECT COUNT(*) FROM "public"."customers" WHERE "email" IS NULL`,
		},
		{
			name:        "duplicate_count",
			expression:  "duplicate_count(customer_id) = 0",
			schema:      "public",
			table:       "customers",
			expectedSQL: `SELECT COUNT(*) - COUNT(DISTINCT "customer_id") FROM "public"."customers"`,
		},
		{
			name:         "invalid_percent",
			expression:   "invalid_percent(email) < 5%",
			config:       map[string]any{"valid regex": `^[^@]+@[^@]+$`},
			schema:       "public",
			table:        "customers",
			expectedSQL:  `SELECT COUNT(*), SUM(CASE WHEN CAST("email" AS TEXT) !~ $1 THEN 1 ELSE 0 END) FROM "public"."customers" WHERE "email" IS NOT NULL`,
			expectedArgs: []any{`^[^@]+@[^@]+$`},
		},
		{
			name:         "invalid_count",
			expression:   "invalid_count(tier) = 0",
			config:       map[string]any{"valid values": []any{"Bronze", "Silver", "Gold"}},
			schema:       "public",
			table:        "customers",
			expectedSQL:  `SELECT COUNT(*) FROM "public"."customers" WHERE "tier" IS NOT NULL AND "tier" NOT IN ($1, $2, $3)`,
			expectedArgs: []any{"Bronze", "Silver", "Gold"},
		},
		{
			name:        "invalid_count with empty values",
			expression:  "invalid_count(tier) = 0",
			config:      map[string]any{"valid values": []any{}},
			schema:      "public",
			table:       "customers",
			expectedSQL: `SELECT COUNT(*) FROM "public"."customers" WHERE "tier" IS NOT NULL`,
		},
		{
			name:        "avg",
			expression:  "avg(total_spent) > 100",
			schema:      "public",
			table:       "customers",
			expectedSQL: `SELECT AVG("total_spent") FROM "public"."customers"`,
		},
		{
			name:         "tolerance",
			expression:   "total_revenue = total_quantity_sold * current_price",
			config:       map[string]any{"tolerance": "1%"},
			schema:       "public",
			table:        "product_performance",
			expectedSQL:  `SELECT COUNT(*) FROM "public"."product_performance" WHERE ABS((total_revenue) - (total_quantity_sold * current_price)) * 1.0 / GREATEST(ABS(total_revenue), ABS(total_quantity_sold * current_price), 1) > $1`,
			expectedArgs: []any{0.01},
		},
		{
			name:         "comparison on a column",
			expression:   "price > 0",
			schema:       "public",
			table:        "products",
			expectedSQL:  `SELECT COUNT(*) FROM "public"."products" WHERE "price" IS NOT NULL AND NOT ("price" > CAST($1 AS DOUBLE PRECISION))`,
			expectedArgs: []any{float64(0)},
		},
		{
			name:         "comparison with double equals",
			expression:   "discount == 0",
			schema:       "public",
			table:        "products",
			expectedSQL:  `SELECT COUNT(*) FROM "public"."products" WHERE "discount" IS NOT NULL AND NOT ("discount" = CAST($1 AS DOUBLE PRECISION))`,
			expectedArgs: []any{float64(0)},
		},
		{
			name:         "fractional comparison on an integer column",
			expression:   "quantity >= 0.5",
			schema:       "public",
			table:        "order_items",
			expectedSQL:  `SELECT COUNT(*) FROM "public"."order_items" WHERE "quantity" IS NOT NULL AND NOT ("quantity" >= CAST($1 AS DOUBLE PRECISION))`,
			expectedArgs: []any{0.5},
		},
		{
			name:        "literal predicate",
			expression:  "status = 'active'",
			schema:      "public",
			table:       "customers",
			expectedSQL: `SELECT COUNT(*) FROM "public"."customers" WHERE NOT (status = 'active')`,
		},
	})
}
