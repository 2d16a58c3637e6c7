package catalog

// Templates never change at runtime. Ranking ties in the ROW_NUMBER based
// queries are resolved by the warehouse; favorite_month returns every month
// tied for the maximum.

var ListCustomers = register(Query{
	Name: "list_customers",
	SQL: `
SELECT customer_key, customerfname, customerlname, customerphone
FROM subs_dim_customer
`,
})

var CustomerByPhone = register(Query{
	Name:   "customer_by_phone",
	Params: []string{"phone"},
	SQL: `
SELECT customer_key, customerfname, customerlname, customerphone
FROM subs_dim_customer
WHERE customerphone = ?
`,
})

var FavoriteSandwich = register(Query{
	Name:   "favorite_sandwich",
	Params: []string{"customer_key"},
	SQL: `
WITH sandwich_counts AS (
    SELECT o.customer_key, p.productname, COUNT(*) AS sandwich_count
    FROM subs_fact_orderline o
        JOIN subs_dim_product p
            ON o.product_key = p.product_key
    WHERE p.breadtype IS NOT NULL
    AND o.customer_key = ?
    GROUP BY o.customer_key, p.productname
),
ranked_sandwiches AS (
    SELECT customer_key, productname AS sandwich, sandwich_count,
        ROW_NUMBER() OVER (PARTITION BY customer_key ORDER BY sandwich_count DESC) AS rn
    FROM sandwich_counts
)
SELECT customer_key, sandwich, sandwich_count
FROM ranked_sandwiches
WHERE rn = 1
`,
})

var FavoriteSide = register(Query{
	Name:   "favorite_side",
	Params: []string{"customer_key"},
	SQL: `
WITH side_counts AS (
    SELECT o.customer_key, p.productname, COUNT(*) AS side_count
    FROM subs_fact_orderline o
        JOIN subs_dim_product p
            ON o.product_key = p.product_key
    WHERE p.breadtype IS NULL
    AND o.customer_key = ?
    GROUP BY o.customer_key, p.productname
),
ranked_sides AS (
    SELECT customer_key, productname AS side, side_count,
        ROW_NUMBER() OVER (PARTITION BY customer_key ORDER BY side_count DESC) AS rn
    FROM side_counts
)
SELECT customer_key, side, side_count
FROM ranked_sides
WHERE rn = 1
`,
})

var TotalInches = register(Query{
	Name:   "total_inches",
	Params: []string{"customer_key"},
	SQL: `
SELECT o.customer_key, SUM(p.length) AS inches_of_sandwich
FROM subs_fact_orderline o
    JOIN subs_dim_product p
        ON o.product_key = p.product_key
WHERE o.customer_key = ?
GROUP BY o.customer_key
HAVING SUM(p.length) > 0
`,
})

var MostVisitedStore = register(Query{
	Name:   "most_visited_store",
	Params: []string{"customer_key"},
	SQL: `
WITH store_visits AS (
    SELECT o.customer_key, o.store_key, s.city, COUNT(*) AS times_visited
    FROM subs_fact_orderline o
        JOIN subs_dim_store s
            ON o.store_key = s.store_key
    WHERE o.customer_key = ?
    GROUP BY o.customer_key, o.store_key, s.city
),
ranked_stores AS (
    SELECT customer_key, store_key, city, times_visited,
        ROW_NUMBER() OVER (PARTITION BY customer_key ORDER BY times_visited DESC) AS rn
    FROM store_visits
)
SELECT customer_key, store_key, city, times_visited AS most_visited_count
FROM ranked_stores
WHERE rn = 1
`,
})

var FavoriteMonth = register(Query{
	Name:   "favorite_month",
	Params: []string{"customer_key"},
	SQL: `
WITH visits AS (
    SELECT o.customer_key, d.month, COUNT(*) AS numofvisits
    FROM subs_fact_orderline o
        JOIN subs_dim_date d
            ON o.date_key = d.date_key
    WHERE o.customer_key = ?
    GROUP BY o.customer_key, d.month
),
max_visits AS (
    SELECT customer_key, MAX(numofvisits) AS maxvisits
    FROM visits
    GROUP BY customer_key
)
SELECT v.customer_key, v.month, v.numofvisits
FROM visits v
    JOIN max_visits m
        ON v.customer_key = m.customer_key
        AND v.numofvisits = m.maxvisits
`,
})

var FavoriteSandwichesAll = register(Query{
	Name: "favorite_sandwiches_all",
	SQL: `
WITH sandwich_counts AS (
    SELECT o.customer_key, p.productname, COUNT(*) AS sandwich_count
    FROM subs_fact_orderline o
        JOIN subs_dim_product p
            ON o.product_key = p.product_key
    WHERE p.breadtype IS NOT NULL
    GROUP BY o.customer_key, p.productname
),
ranked_sandwiches AS (
    SELECT customer_key, productname AS sandwich, sandwich_count,
        ROW_NUMBER() OVER (PARTITION BY customer_key ORDER BY sandwich_count DESC) AS rn
    FROM sandwich_counts
)
SELECT customer_key, sandwich, sandwich_count
FROM ranked_sandwiches
WHERE rn = 1
ORDER BY customer_key
`,
})

var ListTables = register(Query{
	Name: "list_tables",
	SQL:  `SHOW TABLES`,
	Dialects: map[string]string{
		"sqlite3":  `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`,
		"postgres": `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name`,
	},
})
