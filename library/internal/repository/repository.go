package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Repository interface {
	GetBook(ctx context.Context, id int) (model.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (model.Book, error)
	InsertBook(ctx context.Context, req model.AddBookRequest) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	SearchBooks(ctx context.Context, term string, searchType model.SearchType) ([]model.Book, error)
	UpdateBookAvailability(ctx context.Context, bookID, delta int) error

	InsertBorrowRecord(ctx context.Context, patronID string, bookID int, borrowedAt, dueAt time.Time) (model.BorrowRecord, error)
	GetOpenBorrow(ctx context.Context, patronID string, bookID int) (model.BorrowRecord, error)
	GetLatestBorrow(ctx context.Context, patronID string, bookID int) (model.BorrowRecord, error)
	CountOpenBorrows(ctx context.Context, patronID string) (int, error)
	ListBorrowRecords(ctx context.Context, patronID string) ([]model.BorrowRecord, error)
	CloseBorrowRecord(ctx context.Context, id int, returnedAt time.Time) error

	InsertEvent(ctx context.Context, ev model.Event) error
	PatronStats(ctx context.Context, patronID string) ([]model.PatronStats, error)

	// WithTx runs fn against a repository bound to a single transaction.
	// The transaction is committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(repo Repository) error) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:   db,
		pool: db,
		log:  log.Named("repo"),
	}, nil
}

const (
	booksTableName         = `books`
	borrowRecordsTableName = `borrow_records`
	eventsTableName        = `circulation_events`
)

var (
	qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	bookColumns   = []string{"id", "title", "author", "isbn", "total_copies", "available_copies"}
	borrowColumns = []string{"id", "patron_id", "book_id", "borrow_date", "due_date", "return_date"}
)

func (r *repository) WithTx(ctx context.Context, fn func(repo Repository) error) error {
	if r.pool == nil {
		// already inside a transaction
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&repository{db: tx, log: r.log})
	})
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"id": id})
}

func (r *repository) GetBookByISBN(ctx context.Context, isbn string) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"isbn": isbn})
}

func (r *repository) getBook(ctx context.Context, pred sq.Eq) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) InsertBook(ctx context.Context, req model.AddBookRequest) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "isbn", "total_copies", "available_copies").
		Values(req.Title, req.Author, req.ISBN, req.TotalCopies, req.TotalCopies).
		Suffix("returning " + strings.Join(bookColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if isUniqueViolation(err) {
			return model.Book{}, errs.ErrDuplicate
		}
		r.log.Error("InsertBook", zap.String("q", query), zap.Error(err))
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	q := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("title", "id")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	books, err := r.collectBooks(ctx, query, args)
	if err != nil {
		return model.ListBooks{}, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `select count(*) from books`).Scan(&total); err != nil {
		return model.ListBooks{}, err
	}
	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *repository) SearchBooks(ctx context.Context, term string, searchType model.SearchType) ([]model.Book, error) {
	q := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("title", "id")
	pattern := "%" + likeEscaper.Replace(term) + "%"
	switch searchType {
	case model.SearchTitle:
		q = q.Where(sq.ILike{"title": pattern})
	case model.SearchAuthor:
		q = q.Where(sq.ILike{"author": pattern})
	case model.SearchISBN:
		q = q.Where(sq.Eq{"isbn": term})
	default:
		return nil, errors.Errorf("unknown search type %q", searchType)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return r.collectBooks(ctx, query, args)
}

func (r *repository) collectBooks(ctx context.Context, query string, args []any) ([]model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
}

// UpdateBookAvailability moves available_copies by delta, staying within 0..total_copies.
func (r *repository) UpdateBookAvailability(ctx context.Context, bookID, delta int) error {
	q := `
update books
    set available_copies = available_copies + @delta
where id = @book_id
    and available_copies + @delta between 0 and total_copies`
	args := pgx.NamedArgs{
		"book_id": bookID,
		"delta":   delta,
	}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errs.ErrConflict, "availability of book %d by %d", bookID, delta)
	}
	return nil
}

func (r *repository) InsertBorrowRecord(ctx context.Context, patronID string, bookID int, borrowedAt, dueAt time.Time) (model.BorrowRecord, error) {
	query, args, err := qb.Insert(borrowRecordsTableName).
		Columns("patron_id", "book_id", "borrow_date", "due_date").
		Values(patronID, bookID, borrowedAt, dueAt).
		Suffix("returning " + strings.Join(borrowColumns, ", ")).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	defer rows.Close()

	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BorrowRecord])
	if err != nil {
		r.log.Error("InsertBorrowRecord", zap.String("q", query), zap.Any("args", args))
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) GetOpenBorrow(ctx context.Context, patronID string, bookID int) (model.BorrowRecord, error) {
	return r.getBorrow(ctx, sq.And{
		sq.Eq{"patron_id": patronID},
		sq.Eq{"book_id": bookID},
		sq.Eq{"return_date": nil},
	})
}

func (r *repository) GetLatestBorrow(ctx context.Context, patronID string, bookID int) (model.BorrowRecord, error) {
	return r.getBorrow(ctx, sq.And{
		sq.Eq{"patron_id": patronID},
		sq.Eq{"book_id": bookID},
	})
}

func (r *repository) getBorrow(ctx context.Context, pred sq.Sqlizer) (model.BorrowRecord, error) {
	query, args, err := qb.Select(borrowColumns...).
		From(borrowRecordsTableName).
		Where(pred).
		OrderBy("borrow_date desc", "id desc").
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	defer rows.Close()

	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BorrowRecord])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrNotFound
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) CountOpenBorrows(ctx context.Context, patronID string) (int, error) {
	q := `
	select count(*) from borrow_records
	where patron_id = $1 and return_date is null
`
	var count int
	if err := r.db.QueryRow(ctx, q, patronID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ListBorrowRecords(ctx context.Context, patronID string) ([]model.BorrowRecord, error) {
	query, args, err := qb.Select(borrowColumns...).
		From(borrowRecordsTableName).
		Where(sq.Eq{"patron_id": patronID}).
		OrderBy("borrow_date", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.BorrowRecord])
}

// CloseBorrowRecord stamps the return time once; a closed record is reported as not found.
func (r *repository) CloseBorrowRecord(ctx context.Context, id int, returnedAt time.Time) error {
	q := `
update borrow_records
    set return_date = @returned_at
where id = @id and return_date is null`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":          id,
		"returned_at": returnedAt,
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// InsertEvent is idempotent on the event id. A refund carries no patron, so it
// is attributed to the patron of the payment with the same transaction id.
func (r *repository) InsertEvent(ctx context.Context, ev model.Event) error {
	q := `
insert into circulation_events (event_uid, event_type, patron_id, book_id, amount, transaction_id, occurred_at)
values (
    @event_uid,
    @event_type,
    coalesce(
        nullif(@patron_id::text, ''),
        (select p.patron_id from circulation_events p
         where p.transaction_id = @transaction_id and p.event_type = 'FEE_PAID' limit 1),
        ''),
    @book_id,
    @amount,
    @transaction_id,
    @occurred_at)
on conflict (event_uid) do nothing`
	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"event_uid":      ev.ID,
		"event_type":     ev.EventType,
		"patron_id":      ev.PatronID,
		"book_id":        ev.BookID,
		"amount":         ev.Amount,
		"transaction_id": ev.TransactionID,
		"occurred_at":    ev.OccurredAt,
	})
	return err
}

// PatronStats aggregates circulation events per patron; an empty patronID selects all patrons.
func (r *repository) PatronStats(ctx context.Context, patronID string) ([]model.PatronStats, error) {
	q := qb.Select(
		"patron_id",
		"count(*) filter (where event_type = 'BORROWED') as borrowed",
		"count(*) filter (where event_type = 'RETURNED') as returned",
		"coalesce(sum(amount) filter (where event_type = 'FEE_PAID'), 0) as fees_paid",
		"coalesce(sum(amount) filter (where event_type = 'FEE_REFUNDED'), 0) as fees_refunded",
	).
		From(eventsTableName).
		Where(sq.NotEq{"patron_id": ""}).
		GroupBy("patron_id").
		OrderBy("patron_id")
	if patronID != "" {
		q = q.Where(sq.Eq{"patron_id": patronID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.PatronStats])
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
