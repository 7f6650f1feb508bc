// Package persistence provides SQLite-backed storage for houses, wars,
// battle turn logs, and income holdings.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/house-wars/internal/faction"
	"github.com/talgya/house-wars/internal/war"
)

// DB wraps a SQLite connection. It implements war.Store.
type DB struct {
	conn *sqlx.DB
}

var _ war.Store = (*DB)(nil)

// Open opens or creates a SQLite database at the given path. Pass ":memory:"
// for an ephemeral store (tests).
func Open(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Turns resolve synchronously one command at a time; a single
	// connection also keeps :memory: databases coherent.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS factions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		treasury INTEGER NOT NULL DEFAULT 1000,
		soldiers INTEGER NOT NULL DEFAULT 100,
		trait TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		attacker_id INTEGER NOT NULL,
		defender_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		scale TEXT NOT NULL,
		weather TEXT NOT NULL DEFAULT 'normal',
		terrain TEXT NOT NULL DEFAULT 'plains',
		attacker_committed INTEGER NOT NULL,
		defender_committed INTEGER NOT NULL,
		attacker_losses INTEGER NOT NULL DEFAULT 0,
		defender_losses INTEGER NOT NULL DEFAULT 0,
		winner_id INTEGER,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP,
		FOREIGN KEY(attacker_id) REFERENCES factions(id),
		FOREIGN KEY(defender_id) REFERENCES factions(id),
		FOREIGN KEY(winner_id) REFERENCES factions(id)
	);

	CREATE TABLE IF NOT EXISTS battle_turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		war_id INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		attacker_action TEXT NOT NULL,
		defender_action TEXT NOT NULL,
		outcome TEXT NOT NULL,
		result TEXT NOT NULL,
		attacker_casualties INTEGER NOT NULL DEFAULT 0,
		defender_casualties INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(war_id, turn),
		FOREIGN KEY(war_id) REFERENCES wars(id)
	);

	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		faction_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT '',
		income_per_minute INTEGER NOT NULL DEFAULT 0,
		seized INTEGER NOT NULL DEFAULT 0,
		seized_by INTEGER,
		FOREIGN KEY(faction_id) REFERENCES factions(id),
		FOREIGN KEY(seized_by) REFERENCES factions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_wars_status ON wars(status);
	CREATE INDEX IF NOT EXISTS idx_turns_war ON battle_turns(war_id);
	CREATE INDEX IF NOT EXISTS idx_holdings_faction ON holdings(faction_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Seed inserts the starting houses and, on a fresh database, their holdings.
// Existing houses (by name) are left untouched.
func (db *DB) Seed(houses []*faction.Faction, holdings []*faction.Holding) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, h := range houses {
		_, err := tx.Exec(`INSERT OR IGNORE INTO factions
			(id, name, treasury, soldiers, trait, region, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Name, h.Treasury, h.Soldiers, h.Trait, h.Region, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("seed house %s: %w", h.Name, err)
		}
	}

	var holdingCount int
	if err := tx.Get(&holdingCount, "SELECT COUNT(*) FROM holdings"); err != nil {
		return err
	}
	if holdingCount == 0 {
		for _, h := range holdings {
			_, err := tx.Exec(`INSERT INTO holdings
				(faction_id, kind, name, region, income_per_minute)
				VALUES (?, ?, ?, ?, ?)`,
				h.FactionID, h.Kind, h.Name, h.Region, h.IncomePerMinute)
			if err != nil {
				return fmt.Errorf("seed holding %s: %w", h.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world seeded", "houses", len(houses), "holdings", len(holdings))
	return nil
}

// Faction returns one house, or nil if it does not exist.
func (db *DB) Faction(id faction.ID) (*faction.Faction, error) {
	var f faction.Faction
	err := db.conn.Get(&f, "SELECT * FROM factions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Factions returns all houses.
func (db *DB) Factions() ([]*faction.Faction, error) {
	var fs []*faction.Faction
	err := db.conn.Select(&fs, "SELECT * FROM factions ORDER BY id")
	return fs, err
}

// UpdateFactionResources adjusts a house's treasury and army. Both values
// floor at zero. Returns false when the house does not exist.
func (db *DB) UpdateFactionResources(id faction.ID, goldDelta, soldiersDelta int64) (bool, error) {
	res, err := db.conn.Exec(`UPDATE factions
		SET treasury = MAX(0, treasury + ?), soldiers = MAX(0, soldiers + ?)
		WHERE id = ?`, goldDelta, soldiersDelta, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ActiveWars lists active wars, filtered to one house when id != 0.
func (db *DB) ActiveWars(id faction.ID) ([]*war.War, error) {
	var ws []*war.War
	var err error
	if id != 0 {
		err = db.conn.Select(&ws, `SELECT * FROM wars
			WHERE status = 'active' AND (attacker_id = ? OR defender_id = ?)
			ORDER BY id`, id, id)
	} else {
		err = db.conn.Select(&ws, "SELECT * FROM wars WHERE status = 'active' ORDER BY id")
	}
	return ws, err
}

// War returns one war, or nil if it does not exist.
func (db *DB) War(id int64) (*war.War, error) {
	var w war.War
	err := db.conn.Get(&w, "SELECT * FROM wars WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWar inserts a new war and returns its id.
func (db *DB) CreateWar(w *war.War) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO wars
		(attacker_id, defender_id, status, scale, weather, terrain,
		 attacker_committed, defender_committed, attacker_losses, defender_losses, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?)`,
		w.AttackerID, w.DefenderID, w.Status, w.Scale, w.Weather, w.Terrain,
		w.AttackerCommitted, w.DefenderCommitted, w.StartedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// TurnCount returns how many turns have been resolved for a war.
func (db *DB) TurnCount(warID int64) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM battle_turns WHERE war_id = ?", warID)
	return n, err
}

// RecentTurns returns the most recent turn logs for a war, newest first.
func (db *DB) RecentTurns(warID int64, limit int) ([]*war.TurnLog, error) {
	var logs []*war.TurnLog
	err := db.conn.Select(&logs, `SELECT * FROM battle_turns
		WHERE war_id = ? ORDER BY turn DESC LIMIT ?`, warID, limit)
	return logs, err
}

// Holdings returns a house's income holdings, highest income first.
func (db *DB) Holdings(factionID faction.ID) ([]*faction.Holding, error) {
	var hs []*faction.Holding
	err := db.conn.Select(&hs, `SELECT * FROM holdings
		WHERE faction_id = ? ORDER BY income_per_minute DESC`, factionID)
	return hs, err
}

// IncomeByHouse sums holding income per minute by effective owner: the
// seizing house for seized holdings, the original owner otherwise.
func (db *DB) IncomeByHouse() (map[faction.ID]int64, error) {
	rows, err := db.conn.Queryx(`SELECT
			CASE WHEN seized = 1 THEN seized_by ELSE faction_id END AS owner,
			SUM(income_per_minute) AS income
		FROM holdings GROUP BY owner`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := make(map[faction.ID]int64)
	for rows.Next() {
		var owner faction.ID
		var income int64
		if err := rows.Scan(&owner, &income); err != nil {
			return nil, err
		}
		incomes[owner] = income
	}
	return incomes, rows.Err()
}

// CommitTurn applies one resolved turn in a single transaction: cumulative
// losses, the turn log, and — when the war ends — resource transfers,
// holding seizures, and the status change. Either all of it lands or none.
func (db *DB) CommitTurn(c *war.TurnCommit) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE wars
		SET attacker_losses = ?, defender_losses = ?
		WHERE id = ? AND status = 'active'`,
		c.AttackerLosses, c.DefenderLosses, c.WarID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("war %d is not active", c.WarID)
	}

	if c.Log != nil {
		_, err = tx.Exec(`INSERT INTO battle_turns
			(war_id, turn, attacker_action, defender_action, outcome, result,
			 attacker_casualties, defender_casualties, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Log.WarID, c.Log.Turn, c.Log.AttackerAction, c.Log.DefenderAction,
			c.Log.Outcome, c.Log.Result,
			c.Log.AttackerCasualties, c.Log.DefenderCasualties, c.Log.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert turn log: %w", err)
		}
	}

	if c.End != nil {
		for _, t := range c.End.Transfers {
			_, err = tx.Exec(`UPDATE factions
				SET treasury = MAX(0, treasury + ?), soldiers = MAX(0, soldiers + ?)
				WHERE id = ?`, t.Gold, t.Soldiers, t.FactionID)
			if err != nil {
				return fmt.Errorf("transfer to house %d: %w", t.FactionID, err)
			}
		}
		for _, sz := range c.End.Seizures {
			_, err = tx.Exec(`UPDATE holdings SET seized = 1, seized_by = ?
				WHERE id = ? AND seized = 0`, sz.ByID, sz.HoldingID)
			if err != nil {
				return fmt.Errorf("seize holding %d: %w", sz.HoldingID, err)
			}
		}
		_, err = tx.Exec(`UPDATE wars
			SET status = 'ended', winner_id = ?, ended_at = ?
			WHERE id = ?`, c.End.WinnerID, time.Now().UTC(), c.WarID)
		if err != nil {
			return fmt.Errorf("end war %d: %w", c.WarID, err)
		}
	}

	return tx.Commit()
}
