// Package taxlot tracks the cost-basis lineage of a multi-asset crypto holding.
//
// It folds a chronological stream of exchange transactions (deposits,
// withdrawals, trades, staking rewards) into per-currency stacks of lots.
// Every lot records the transaction that created it and, when it was minted by
// a trade, a back-reference to the lot it was converted from. Disposals append
// deductions to the consumed lots instead of destroying them, so the full
// ancestry of every unit ever held stays queryable.
//
// On top of that ledger, Calculator produces realized gains (bucketed by
// calendar year, with staking income kept apart) and unrealized gains for the
// lots still open, using an external RateService for fiat conversion.
//
// All quantities are exact decimals; nothing in this package rounds.
package taxlot
