package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelblog/internal/models"
	"travelblog/internal/query"
)

// ArticleListSchema — поля статьи, доступные в фильтрах, сортировке и select.
var ArticleListSchema = query.NewSchema("-createdAt",
	query.Field{Name: "id", Column: "a.id", Kind: query.Int, Filter: true, Sort: true, Select: true},
	query.Field{Name: "title", Column: "a.title", Kind: query.String, Filter: true, Sort: true, Select: true},
	query.Field{Name: "titleEn", Column: "a.title_en", Kind: query.String, Select: true},
	query.Field{Name: "slug", Column: "a.slug", Kind: query.String, Filter: true, Select: true},
	query.Field{Name: "excerpt", Column: "a.excerpt", Kind: query.String, Select: true},
	query.Field{Name: "excerptEn", Column: "a.excerpt_en", Kind: query.String, Select: true},
	query.Field{Name: "content", Column: "a.content", Kind: query.String, Select: true},
	query.Field{Name: "category", Column: "a.category", Kind: query.Enum, Enum: models.CategoryValues(), Filter: true, Sort: true, Select: true},
	query.Field{Name: "coverImage", Column: "a.cover_image", Kind: query.String, Select: true},
	query.Field{Name: "author", Column: "a.author_id", Kind: query.Int, Filter: true, Select: true},
	query.Field{Name: "published", Column: "a.published", Kind: query.Bool, Filter: true, Sort: true, Select: true},
	query.Field{Name: "featured", Column: "a.featured", Kind: query.Bool, Filter: true, Sort: true, Select: true},
	query.Field{Name: "tags", Column: "a.tags", Kind: query.Tags, Filter: true, Select: true},
	query.Field{Name: "city", Column: "(a.location ->> 'city')", Kind: query.String, Filter: true, Sort: true, Select: true},
	query.Field{Name: "province", Column: "(a.location ->> 'province')", Kind: query.String, Filter: true, Select: true},
	query.Field{Name: "location", Column: "a.location", Kind: query.String, Select: true},
	query.Field{Name: "viewCount", Column: "a.view_count", Kind: query.Int, Filter: true, Sort: true, Select: true},
	query.Field{Name: "createdAt", Column: "a.created_at", Kind: query.Time, Filter: true, Sort: true, Select: true},
	query.Field{Name: "updatedAt", Column: "a.updated_at", Kind: query.Time, Filter: true, Sort: true, Select: true},
)

type ArticleRepo interface {
	Create(ctx context.Context, a *models.Article) error
	List(ctx context.Context, q query.ListQuery) ([]*models.Article, int64, error)
	ListProjected(ctx context.Context, q query.ListQuery) ([]map[string]any, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	View(ctx context.Context, id int64, includeDrafts bool) (*models.Article, error)
	ViewBySlug(ctx context.Context, slug string, includeDrafts bool) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	SetCover(ctx context.Context, id int64, path string) error
	Delete(ctx context.Context, id int64) error
	Popular(ctx context.Context, limit int) ([]*models.Article, error)
	Recent(ctx context.Context, limit int) ([]*models.Article, error)
	Cities(ctx context.Context) ([]string, error)
	Search(ctx context.Context, text string, limit int) ([]*models.Article, error)
}

type articleRepo struct{ db *pgxpool.Pool }

func NewArticleRepo(db *pgxpool.Pool) ArticleRepo { return &articleRepo{db: db} }

const articleColumns = `
	a.id, a.title, a.title_en, a.slug, a.content, a.content_en, a.excerpt, a.excerpt_en,
	a.category, a.cover_image, COALESCE(a.author_id, 0), COALESCE(u.name, ''), COALESCE(u.avatar, ''), a.published, a.featured,
	a.tags, a.location, a.view_count, a.created_at, a.updated_at`

// LEFT JOIN: у статьи удалённого пользователя author_id = NULL.
const articleFrom = ` FROM articles a LEFT JOIN users u ON u.id = a.author_id`

func scanArticle(row pgx.Row) (*models.Article, error) {
	var a models.Article
	var author models.AuthorRef
	var tagsRaw, locRaw []byte
	err := row.Scan(
		&a.ID, &a.Title, &a.TitleEn, &a.Slug, &a.Content, &a.ContentEn, &a.Excerpt, &a.ExcerptEn,
		&a.Category, &a.CoverImage, &a.AuthorID, &author.Name, &author.Avatar, &a.Published, &a.Featured,
		&tagsRaw, &locRaw, &a.ViewCount, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != 0 {
		author.ID = a.AuthorID
		a.Author = &author
	}

	a.Tags = []string{}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &a.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(locRaw) > 0 && string(locRaw) != "null" {
		var loc models.Location
		if err := json.Unmarshal(locRaw, &loc); err != nil {
			return nil, fmt.Errorf("decode location: %w", err)
		}
		a.Location = &loc
	}
	return &a, nil
}

func collectArticles(rows pgx.Rows) ([]*models.Article, error) {
	defer rows.Close()
	list := []*models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func encodeArticleJSON(a *models.Article) (tags, loc []byte, err error) {
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if tags, err = json.Marshal(a.Tags); err != nil {
		return nil, nil, err
	}
	if a.Location != nil {
		if loc, err = json.Marshal(a.Location); err != nil {
			return nil, nil, err
		}
	}
	return tags, loc, nil
}

// Create вставляет статью. Конфликт slug возвращается как ErrDuplicate.
func (r *articleRepo) Create(ctx context.Context, a *models.Article) error {
	tags, loc, err := encodeArticleJSON(a)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO articles (title, title_en, slug, content, content_en, excerpt, excerpt_en, category,
		                      cover_image, author_id, published, featured, tags, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13::jsonb,$14::jsonb)
		RETURNING id, view_count, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, q,
		a.Title, a.TitleEn, a.Slug, a.Content, a.ContentEn, a.Excerpt, a.ExcerptEn, a.Category,
		a.CoverImage, a.AuthorID, a.Published, a.Featured, tags, loc,
	).Scan(&a.ID, &a.ViewCount, &a.CreatedAt, &a.UpdatedAt)
	return mapErr(err)
}

// List возвращает страницу и общее число записей с теми же фильтрами.
func (r *articleRepo) List(ctx context.Context, q query.ListQuery) ([]*models.Article, int64, error) {
	where, args := ArticleListSchema.Where(q.Filters, 1)

	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM articles a"+where, args)
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT" + articleColumns + articleFrom + where + ArticleListSchema.OrderBy(q.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, sql, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collectArticles(rows)
	return list, total, err
}

// ListProjected — вариант List для ?select=: строки возвращаются как объекты с публичными именами полей.
func (r *articleRepo) ListProjected(ctx context.Context, q query.ListQuery) ([]map[string]any, int64, error) {
	return listProjected(ctx, r.db, ArticleListSchema, "articles a", q)
}

func (r *articleRepo) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	row := r.db.QueryRow(ctx, "SELECT"+articleColumns+articleFrom+" WHERE a.id = $1", id)
	a, err := scanArticle(row)
	return a, mapErr(err)
}

// View атомарно увеличивает счётчик просмотров и возвращает статью с уже увеличенным значением.
// Черновики видны только при includeDrafts.
func (r *articleRepo) View(ctx context.Context, id int64, includeDrafts bool) (*models.Article, error) {
	return r.view(ctx, "id = $1", id, includeDrafts)
}

func (r *articleRepo) ViewBySlug(ctx context.Context, slug string, includeDrafts bool) (*models.Article, error) {
	return r.view(ctx, "slug = $1", slug, includeDrafts)
}

func (r *articleRepo) view(ctx context.Context, cond string, arg any, includeDrafts bool) (*models.Article, error) {
	q := `
		WITH a AS (
			UPDATE articles SET view_count = view_count + 1
			WHERE ` + cond + ` AND (published OR $2)
			RETURNING *
		)
		SELECT` + articleColumns + ` FROM a LEFT JOIN users u ON u.id = a.author_id`
	a, err := scanArticle(r.db.QueryRow(ctx, q, arg, includeDrafts))
	return a, mapErr(err)
}

// Update сохраняет все изменяемые поля статьи (last-write-wins).
func (r *articleRepo) Update(ctx context.Context, a *models.Article) error {
	tags, loc, err := encodeArticleJSON(a)
	if err != nil {
		return err
	}
	const q = `
		UPDATE articles
		SET title=$1, title_en=$2, slug=$3, content=$4, content_en=$5, excerpt=$6, excerpt_en=$7,
		    category=$8, cover_image=$9, published=$10, featured=$11,
		    tags=$12::jsonb, location=$13::jsonb, updated_at=NOW()
		WHERE id=$14
		RETURNING updated_at
	`
	err = r.db.QueryRow(ctx, q,
		a.Title, a.TitleEn, a.Slug, a.Content, a.ContentEn, a.Excerpt, a.ExcerptEn,
		a.Category, a.CoverImage, a.Published, a.Featured, tags, loc, a.ID,
	).Scan(&a.UpdatedAt)
	return mapErr(err)
}

func (r *articleRepo) SetCover(ctx context.Context, id int64, path string) error {
	return affected(r.db.Exec(ctx,
		"UPDATE articles SET cover_image = $2, updated_at = NOW() WHERE id = $1", id, path))
}

// Delete удаляет статью; комментарии удаляются каскадно.
func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, "DELETE FROM articles WHERE id = $1", id))
}

func (r *articleRepo) Popular(ctx context.Context, limit int) ([]*models.Article, error) {
	rows, err := r.db.Query(ctx,
		"SELECT"+articleColumns+articleFrom+" WHERE a.published ORDER BY a.view_count DESC, a.id DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func (r *articleRepo) Recent(ctx context.Context, limit int) ([]*models.Article, error) {
	rows, err := r.db.Query(ctx,
		"SELECT"+articleColumns+articleFrom+" ORDER BY a.created_at DESC, a.id DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func (r *articleRepo) Cities(ctx context.Context) ([]string, error) {
	const q = `
		SELECT DISTINCT location ->> 'city' AS city
		FROM articles
		WHERE published AND COALESCE(location ->> 'city', '') <> ''
		ORDER BY city
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	cities, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if cities == nil {
		cities = []string{}
	}
	return cities, err
}

// Search ищет подстроку (без учёта регистра) в опубликованных статьях на обоих языках.
func (r *articleRepo) Search(ctx context.Context, text string, limit int) ([]*models.Article, error) {
	pattern := "%" + escapeLike(text) + "%"
	q := "SELECT" + articleColumns + articleFrom + `
		WHERE a.published AND (
			a.title ILIKE $1 OR a.excerpt ILIKE $1 OR a.content ILIKE $1 OR
			COALESCE(a.title_en, '') ILIKE $1 OR COALESCE(a.excerpt_en, '') ILIKE $1 OR COALESCE(a.content_en, '') ILIKE $1
		)
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, q, pattern, limit)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
