package repository

import (
	"context"
	"fmt"

	"travelblog/internal/models"
	"travelblog/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var CommentListSchema = query.NewSchema("-createdAt",
	query.Field{Name: "id", Column: "c.id", Kind: query.Int, Filter: true, Sort: true, Select: true},
	query.Field{Name: "article", Column: "c.article_id", Kind: query.Int, Filter: true, Sort: true, Select: true},
	query.Field{Name: "user", Column: "c.user_id", Kind: query.Int, Filter: true, Select: true},
	query.Field{Name: "parent", Column: "c.parent_id", Kind: query.Int, Filter: true, Select: true},
	query.Field{Name: "content", Column: "c.content", Kind: query.String, Select: true},
	query.Field{Name: "status", Column: "c.status", Kind: query.Enum, Enum: models.CommentStatusValues(), Filter: true, Sort: true, Select: true},
	query.Field{Name: "createdAt", Column: "c.created_at", Kind: query.Time, Filter: true, Sort: true, Select: true},
	query.Field{Name: "updatedAt", Column: "c.updated_at", Kind: query.Time, Filter: true, Sort: true, Select: true},
)

type CommentRepo interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID int64, status models.CommentStatus) ([]*models.Comment, error)
	List(ctx context.Context, q query.ListQuery) ([]*models.Comment, int64, error)
	ListProjected(ctx context.Context, q query.ListQuery) ([]map[string]any, int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.CommentStatus) (*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type commentRepo struct{ db *pgxpool.Pool }

func NewCommentRepo(db *pgxpool.Pool) CommentRepo { return &commentRepo{db: db} }

const commentColumns = `c.id, c.article_id, COALESCE(c.user_id, 0), COALESCE(u.name, ''), COALESCE(u.avatar, ''), c.parent_id, c.content, c.status, c.created_at, c.updated_at`

const commentFrom = ` FROM comments c LEFT JOIN users u ON u.id = c.user_id`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	var user models.AuthorRef
	err := row.Scan(&c.ID, &c.ArticleID, &c.UserID, &user.Name, &user.Avatar, &c.ParentID,
		&c.Content, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.UserID != 0 {
		user.ID = c.UserID
		c.User = &user
	}
	return &c, nil
}

func collectComments(rows pgx.Rows) ([]*models.Comment, error) {
	defer rows.Close()
	list := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	const q = `
		INSERT INTO comments (article_id, user_id, parent_id, content, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, q, c.ArticleID, c.UserID, c.ParentID, c.Content, c.Status).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err)
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, "SELECT "+commentColumns+commentFrom+" WHERE c.id = $1", id))
	return c, mapErr(err)
}

// ListByArticle — комментарии статьи с данным статусом в хронологическом порядке.
func (r *commentRepo) ListByArticle(ctx context.Context, articleID int64, status models.CommentStatus) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+commentColumns+commentFrom+" WHERE c.article_id = $1 AND c.status = $2 ORDER BY c.created_at, c.id",
		articleID, status)
	if err != nil {
		return nil, err
	}
	return collectComments(rows)
}

func (r *commentRepo) List(ctx context.Context, q query.ListQuery) ([]*models.Comment, int64, error) {
	where, args := CommentListSchema.Where(q.Filters, 1)

	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM comments c"+where, args)
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT " + commentColumns + commentFrom + where + CommentListSchema.OrderBy(q.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, sql, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collectComments(rows)
	return list, total, err
}

func (r *commentRepo) ListProjected(ctx context.Context, q query.ListQuery) ([]map[string]any, int64, error) {
	return listProjected(ctx, r.db, CommentListSchema, "comments c", q)
}

func (r *commentRepo) UpdateStatus(ctx context.Context, id int64, status models.CommentStatus) (*models.Comment, error) {
	const q = `
		WITH c AS (
			UPDATE comments SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *
		)
		SELECT ` + commentColumns + ` FROM c LEFT JOIN users u ON u.id = c.user_id`
	c, err := scanComment(r.db.QueryRow(ctx, q, id, status))
	return c, mapErr(err)
}

// Delete удаляет комментарий вместе с ответами на него.
func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, "DELETE FROM comments WHERE id = $1", id))
}
