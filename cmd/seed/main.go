// Команда seed наполняет базу демо-данными: пользователи, статьи, комментарии.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"travelblog/internal/authz"
	"travelblog/internal/config"
	"travelblog/internal/db"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/repository"
	"travelblog/internal/services"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

const demoPassword = "password123"

type place struct {
	city, province string
	lng, lat       float64
}

var places = []place{
	{"苏州", "江苏", 120.585, 31.299},
	{"杭州", "浙江", 120.155, 30.274},
	{"乌镇", "浙江", 120.487, 30.745},
	{"周庄", "江苏", 120.845, 31.116},
	{"同里", "江苏", 120.719, 31.155},
	{"西塘", "浙江", 120.889, 30.945},
	{"南浔", "浙江", 120.424, 30.872},
	{"扬州", "江苏", 119.413, 32.394},
	{"绍兴", "浙江", 120.580, 30.030},
	{"无锡", "江苏", 120.312, 31.491},
}

var (
	categories = []models.Category{
		models.CategorySightseeing, models.CategoryFood, models.CategoryCulture,
		models.CategoryAccommodation, models.CategoryOther,
	}
	titleParts = []string{"古镇漫步", "水乡清晨", "园林一日", "夜游运河", "寻味小吃", "老街慢时光", "民宿推荐", "桥与船"}
	tagPool    = []string{"古镇", "园林", "美食", "摄影", "运河", "民宿", "徒步", "周末游", "江南"}
	remarks    = []string{"写得真好，收藏了", "下个月就去", "照片太美了", "请问门票多少钱？", "同意，人少的时候最舒服", "谢谢分享"}
)

type seeder struct {
	faker    *gofakeit.Faker
	users    *services.UserService
	articles services.ArticleService
	comments *services.CommentService
	admin    authz.Actor
}

func main() {
	numUsers := flag.Int("users", 10, "Сколько читателей создать")
	numArticles := flag.Int("articles", 30, "Сколько статей создать")
	maxComments := flag.Int("comments", 5, "Максимум комментариев на статью")
	seed := flag.Int64("seed", 0, "Seed для gofakeit (0 — случайный)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("Ошибка загрузки конфига: " + err.Error())
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer pool.Close()
	if _, err := db.Migrate(pool); err != nil {
		logger.Log.Fatal("Ошибка миграций", zap.Error(err))
	}

	uploader := services.NewUploader(cfg.FileUploadPath, cfg.MaxFileUpload)
	settings, err := services.NewSettingsService(ctx, repository.NewSettingRepo(pool), uploader)
	if err != nil {
		logger.Log.Fatal("Не удалось загрузить настройки", zap.Error(err))
	}
	policy := authz.Default()
	userRepo := repository.NewUserRepository(pool)
	articleRepo := repository.NewArticleRepo(pool)

	auth := services.NewAuthService(userRepo, settings, nil, cfg.JWTSecret, time.Hour)
	if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		logger.Log.Fatal("Не удалось создать администратора", zap.Error(err))
	}
	admin, err := userRepo.GetByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		logger.Log.Fatal("Администратор с ADMIN_EMAIL не найден", zap.String("email", cfg.AdminEmail), zap.Error(err))
	}

	s := &seeder{
		faker:    gofakeit.New(*seed),
		users:    services.NewUserService(userRepo, uploader),
		articles: services.NewArticleService(articleRepo, settings, policy, uploader),
		comments: services.NewCommentService(repository.NewCommentRepo(pool), articleRepo, settings, policy, nil, cfg.FrontendURL),
		admin:    authz.Actor{ID: admin.ID, Role: admin.Role},
	}

	readers, editors := s.seedUsers(ctx, *numUsers)
	authors := append([]authz.Actor{s.admin}, editors...)
	articles := s.seedArticles(ctx, authors, *numArticles)
	total := s.seedComments(ctx, readers, articles, *maxComments)

	logger.Log.Info("Демо-данные созданы",
		zap.Int("readers", len(readers)),
		zap.Int("editors", len(editors)),
		zap.Int("articles", len(articles)),
		zap.Int("comments", total),
		zap.String("password", demoPassword),
	)
}

// seedUsers создаёт n читателей и n/5 редакторов (минимум одного).
func (s *seeder) seedUsers(ctx context.Context, n int) (readers, editors []authz.Actor) {
	create := func(role models.Role) (authz.Actor, bool) {
		p := s.faker.Person()
		u, err := s.users.Create(ctx, models.CreateUserRequest{
			Name:     p.FirstName + " " + p.LastName,
			Email:    strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", p.FirstName, p.LastName, s.faker.Number(100, 9999))),
			Password: demoPassword,
			Role:     role,
		})
		if err != nil {
			logger.Log.Warn("Пользователь пропущен", zap.Error(err))
			return authz.Actor{}, false
		}
		return authz.Actor{ID: u.ID, Role: u.Role}, true
	}

	for i := 0; i < n; i++ {
		if a, ok := create(models.RoleUser); ok {
			readers = append(readers, a)
		}
	}
	for i := 0; i < max(1, n/5); i++ {
		if a, ok := create(models.RoleEditor); ok {
			editors = append(editors, a)
		}
	}
	return readers, editors
}

func (s *seeder) seedArticles(ctx context.Context, authors []authz.Actor, n int) []*models.Article {
	out := make([]*models.Article, 0, n)
	for i := 0; i < n; i++ {
		p := places[s.faker.Number(0, len(places)-1)]
		author := authors[s.faker.Number(0, len(authors)-1)]
		title := p.city + s.faker.RandomString(titleParts)

		req := models.CreateArticleRequest{
			Title:     title,
			TitleEn:   s.faker.Sentence(5),
			Content:   s.content(p),
			ContentEn: "<p>" + s.faker.Paragraph(2, 4, 12, "</p><p>") + "</p>",
			Excerpt:   fmt.Sprintf("%s的%s，适合%s出发。", p.city, s.faker.RandomString(titleParts), s.faker.RandomString([]string{"春天", "夏天", "秋天", "冬天"})),
			ExcerptEn: s.faker.Sentence(14),
			Category:  categories[s.faker.Number(0, len(categories)-1)],
			Published: s.faker.Number(1, 10) <= 8,
			Featured:  s.faker.Number(1, 10) == 1,
			Tags:      s.tags(),
			Location: &models.Location{
				Type:        "Point",
				Coordinates: []float64{p.lng, p.lat},
				City:        p.city,
				Province:    p.province,
				Address:     p.city + s.faker.Street(),
			},
		}
		a, err := s.articles.Create(ctx, author, req)
		if err != nil {
			logger.Log.Warn("Статья пропущена", zap.String("title", title), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *seeder) content(p place) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s印象</h2>", p.city)
	for i, n := 0, s.faker.Number(2, 4); i < n; i++ {
		fmt.Fprintf(&b, "<p>%s，%s。</p>", s.faker.RandomString(titleParts), s.faker.RandomString(remarks))
	}
	return b.String()
}

func (s *seeder) tags() []string {
	seen := map[string]bool{}
	var tags []string
	for i, n := 0, s.faker.Number(1, 4); i < n; i++ {
		t := s.faker.RandomString(tagPool)
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// seedComments пишет комментарии читателей к опубликованным статьям; часть одобряется, на часть отвечает админ.
func (s *seeder) seedComments(ctx context.Context, readers []authz.Actor, articles []*models.Article, maxPer int) int {
	if len(readers) == 0 || maxPer <= 0 {
		return 0
	}
	total := 0
	for _, a := range articles {
		if !a.Published {
			continue
		}
		for i, n := 0, s.faker.Number(0, maxPer); i < n; i++ {
			reader := readers[s.faker.Number(0, len(readers)-1)]
			c, err := s.comments.Create(ctx, reader, a.ID, models.CreateCommentRequest{Content: s.faker.RandomString(remarks)})
			if err != nil {
				logger.Log.Warn("Комментарий пропущен", zap.Int64("article_id", a.ID), zap.Error(err))
				continue
			}
			total++
			if s.faker.Number(1, 4) == 1 {
				continue // остаётся на модерации
			}
			if _, err := s.comments.SetStatus(ctx, c.ID, models.CommentApproved); err != nil {
				logger.Log.Warn("Не удалось одобрить комментарий", zap.Int64("comment_id", c.ID), zap.Error(err))
				continue
			}
			if s.faker.Bool() {
				parent := c.ID
				if _, err := s.comments.Create(ctx, s.admin, a.ID, models.CreateCommentRequest{Content: "感谢留言！", Parent: &parent}); err == nil {
					total++
				}
			}
		}
	}
	return total
}
