package adapters

import "testing"

func TestMysqlDbqQueryBuilder_BuildCheckQuery(t *testing.T) {
	runQueryTests(t, NewMysqlDbqQueryBuilder(discardLogger()), []queryTestCase{
		{
			name:        "row_count",
			expression:  "row_count >= 1",
			schema:      "shop",
			table:       "orders",
			expectedSQL: "SELECT COUNT(*) FROM `shop`.`orders`",
		},
		{
			name:        "missing_count",
			expression:  "missing_count(customer_id) = 0",
			schema:      "shop",
			table:       "orders",
			expectedSQL: "SELECT COUNT(*) FROM `shop`.`orders` WHERE `customer_id` IS NULL",
		},
		{
			name:        "duplicate_count",
			expression:  "duplicate_count(order_id) = 0",
			schema:      "shop",
			table:       "orders",
			expectedSQL: "SELECT COUNT(*) - COUNT(DISTINCT `order_id`) FROM `shop`.`orders`",
		},
		{
			name:         "invalid_percent is case-sensitive",
			expression:   "invalid_percent(status) < 1%",
			config:       map[string]any{"valid regex": "^[A-Z]+$"},
			schema:       "shop",
			table:        "orders",
			expectedSQL:  "SELECT COUNT(*), SUM(CASE WHEN `status` NOT REGEXP ? THEN 1 ELSE 0 END) FROM `shop`.`orders` WHERE `status` IS NOT NULL",
			expectedArgs: []any{"(?-i)^[A-Z]+$"},
		},
		{
			name:         "invalid_count",
			expression:   "invalid_count(status) = 0",
			config:       map[string]any{"valid values": []any{"NEW", "PAID"}},
			schema:       "shop",
			table:        "orders",
			expectedSQL:  "SELECT COUNT(*) FROM `shop`.`orders` WHERE `status` IS NOT NULL AND `status` NOT IN (?, ?)",
			expectedArgs: []any{"NEW", "PAID"},
		},
		{
			name:         "tolerance",
			expression:   "total_amount = subtotal + tax",
			config:       map[string]any{"tolerance": 0.05},
			schema:       "shop",
			table:        "orders",
			expectedSQL:  "SELECT COUNT(*) FROM `shop`.`orders` WHERE ABS((total_amount) - (subtotal + tax)) * 1.0 / GREATEST(ABS(total_amount), ABS(subtotal + tax), 1) > ?",
			expectedArgs: []any{0.05},
		},
		{
			name:         "comparison",
			expression:   "quantity >= 1",
			schema:       "shop",
			table:        "order_items",
			expectedSQL:  "SELECT COUNT(*) FROM `shop`.`order_items` WHERE `quantity` IS NOT NULL AND NOT (`quantity` >= ?)",
			expectedArgs: []any{float64(1)},
		},
	})
}
