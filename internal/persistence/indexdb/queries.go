package indexdb

import "database/sql"

type MintRow struct {
	Seq         int64  `json:"seq"`
	TS          string `json:"ts"`
	Amount      uint64 `json:"amount"`
	GameAmount  uint64 `json:"game_amount"`
	OwnerAmount uint64 `json:"owner_amount"`
	TotalMinted uint64 `json:"total_minted"`
	ActivePool  uint64 `json:"active_pool"`
}

type EarnRow struct {
	Seq        int64  `json:"seq"`
	TS         string `json:"ts"`
	Player     string `json:"player"`
	Amount     uint64 `json:"amount"`
	ActivePool uint64 `json:"active_pool"`
	Minute     int64  `json:"minute"`
}

func (s *SQLiteIndex) RecentMints(limit int) ([]MintRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT seq, ts, amount, game_amount, owner_amount, total_minted, active_pool
		 FROM mints ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MintRow
	for rows.Next() {
		var r MintRow
		if err := rows.Scan(&r.Seq, &r.TS, &r.Amount, &r.GameAmount, &r.OwnerAmount, &r.TotalMinted, &r.ActivePool); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) RecentEarns(player string, limit int) ([]EarnRow, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		rows *sql.Rows
		err  error
	)
	if player == "" {
		rows, err = s.db.Query(
			`SELECT seq, ts, player, amount, active_pool, minute
			 FROM earns ORDER BY seq DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(
			`SELECT seq, ts, player, amount, active_pool, minute
			 FROM earns WHERE player = ? ORDER BY seq DESC LIMIT ?`, player, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EarnRow
	for rows.Next() {
		var r EarnRow
		if err := rows.Scan(&r.Seq, &r.TS, &r.Player, &r.Amount, &r.ActivePool, &r.Minute); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
