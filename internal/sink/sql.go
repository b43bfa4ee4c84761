package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

var schemas = map[string]string{
	KindSQLite: `CREATE TABLE IF NOT EXISTS blackjack_rounds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		game_id INTEGER NOT NULL,
		played_at TEXT NOT NULL,
		result TEXT NOT NULL,
		bet_amount INTEGER NOT NULL,
		net_winnings REAL NOT NULL,
		wallet_start REAL NOT NULL,
		wallet_end REAL NOT NULL,
		player_hands TEXT NOT NULL,
		dealer_hand TEXT NOT NULL
	)`,
	KindMySQL: `CREATE TABLE IF NOT EXISTS blackjack_rounds (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		session_id VARCHAR(26) NOT NULL,
		game_id BIGINT NOT NULL,
		played_at VARCHAR(32) NOT NULL,
		result VARCHAR(8) NOT NULL,
		bet_amount INT NOT NULL,
		net_winnings DOUBLE NOT NULL,
		wallet_start DOUBLE NOT NULL,
		wallet_end DOUBLE NOT NULL,
		player_hands TEXT NOT NULL,
		dealer_hand TEXT NOT NULL
	)`,
}

const insertRound = `INSERT INTO blackjack_rounds
	(session_id, game_id, played_at, result, bet_amount, net_winnings, wallet_start, wallet_end, player_hands, dealer_hand)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLSink inserts each round as a row in a SQLite or MySQL database
type SQLSink struct {
	db      *sql.DB
	driver  string
	session string
	logger  *log.Logger
}

// OpenSQLSink opens the database, creating the rounds table if needed
func OpenSQLSink(driver, dsn, session string, logger *log.Logger) (*SQLSink, error) {
	if dsn == "" {
		return nil, errors.New("sql sink: dsn is required")
	}

	switch driver {
	case KindSQLite:
	case KindMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("sql sink: parse mysql dsn: %w", err)
		}
		dsn = cfg.FormatDSN()
	default:
		return nil, fmt.Errorf("sql sink: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql sink: open %s: %w", driver, err)
	}

	s := &SQLSink{db: db, driver: driver, session: session, logger: logger.WithPrefix("sink")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLSink) migrate() error {
	if _, err := s.db.Exec(schemas[s.driver]); err != nil {
		return fmt.Errorf("sql sink: migrate: %w", err)
	}
	return nil
}

// Upload implements Sink. The batch is written in one transaction.
func (s *SQLSink) Upload(ctx context.Context, batch []Payload) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrSinkUnavailable, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertRound)
	if err != nil {
		return fmt.Errorf("%w: prepare: %v", ErrSinkUnavailable, err)
	}
	defer stmt.Close()

	for _, p := range batch {
		playedAt, err := p.PlayedAt()
		if err != nil {
			return fmt.Errorf("%w: game %d timestamp: %v", ErrSinkUnavailable, p.GameID, err)
		}
		hands, err := json.Marshal(p.PlayerHands)
		if err != nil {
			return fmt.Errorf("%w: encode hands: %v", ErrSinkUnavailable, err)
		}
		dealer, err := json.Marshal(p.DealerHand)
		if err != nil {
			return fmt.Errorf("%w: encode dealer: %v", ErrSinkUnavailable, err)
		}

		if _, err := stmt.ExecContext(ctx, s.session, p.GameID, playedAt.UTC().Format(isoMillis), p.Result, p.BetAmount,
			p.NetWinnings, p.PlayerWalletStart, p.PlayerWalletEnd, string(hands), string(dealer)); err != nil {
			return fmt.Errorf("%w: insert game %d: %v", ErrSinkUnavailable, p.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrSinkUnavailable, err)
	}

	s.logger.Debug("Inserted batch", "games", len(batch), "driver", s.driver)
	return nil
}

// Count returns the number of rounds stored for this session
func (s *SQLSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blackjack_rounds WHERE session_id = ?`, s.session).Scan(&n)
	return n, err
}

// Close implements Sink
func (s *SQLSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if n, err := s.Count(ctx); err == nil {
		s.logger.Info("Closing round store", "driver", s.driver, "rounds", n)
	}
	return s.db.Close()
}
