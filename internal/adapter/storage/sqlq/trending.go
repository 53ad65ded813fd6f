package sqlq

// TrendingScoreExpr computes the trending score of a products row:
//
//	rating*2 + discount*0.5 + scarcity + recency
//
// scarcity is 100/stock, or 0 when stock is 0. recency is
// 30/(days since meta.updatedAt + 1), or 0 without an updatedAt.
// Future timestamps count as 0 days.
const TrendingScoreExpr = `(
	(COALESCE(rating, 0) * 2) +
	(COALESCE(discountpercentage, 0) * 0.5) +
	(CASE WHEN COALESCE(stock, 0) = 0 THEN 0 ELSE (100.0 / stock) END) +
	(CASE
		WHEN (meta->>'updatedAt') IS NOT NULL THEN
			(30.0 / (GREATEST(EXTRACT(DAY FROM NOW() - (meta->>'updatedAt')::timestamp), 0) + 1))
		ELSE 0
	END)
)`

// TrendingOrder sorts by descending score with id as tiebreaker.
const TrendingOrder = "trending_score DESC, id ASC"
