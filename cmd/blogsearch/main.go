// Команда blogsearch — терминальный поиск по блогу поверх debounced Searcher.
//
// Каждая введённая строка считается новым содержимым поля поиска (debounce).
// Строка с префиксом "!" ищет сразу, "esc" скрывает выдачу, "quit" завершает работу.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"html"
	"os"
	"strings"

	"travelblog/internal/client"
	"travelblog/internal/models"
)

var terminalMarks = strings.NewReplacer("<mark>", "\x1b[1;33m", "</mark>", "\x1b[0m")

func main() {
	addr := flag.String("addr", "http://localhost:5000", "Адрес API")
	lang := flag.String("lang", "zh", "Язык выдачи: zh | en")
	limit := flag.Int("limit", 10, "Сколько результатов показывать")
	delay := flag.Duration("debounce", client.DefaultDebounce, "Пауза перед запросом")
	flag.Parse()

	c, err := client.New(*addr, client.WithLang(*lang))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	search := func(ctx context.Context, q string) ([]*models.Article, error) {
		return c.Search(ctx, q, *limit)
	}
	s := client.NewSearcher(search, render, *delay)
	defer s.Close()

	fmt.Println("Введите запрос (!запрос — искать сразу, esc — скрыть, quit — выход)")
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := in.Text()
		switch trimmed := strings.TrimSpace(line); {
		case trimmed == "quit":
			return
		case trimmed == "esc":
			s.Dismiss()
		case strings.HasPrefix(trimmed, "!"):
			s.Submit(strings.TrimPrefix(trimmed, "!"))
		default:
			s.Update(line)
		}
	}
}

func render(r client.Result) {
	switch {
	case r.Cleared:
		fmt.Println("— выдача скрыта —")
	case r.Err != nil:
		fmt.Fprintf(os.Stderr, "Ошибка поиска %q: %v\n", r.Query, r.Err)
	case len(r.Articles) == 0:
		fmt.Printf("По запросу %q ничего не найдено\n", r.Query)
	default:
		fmt.Printf("%q: %d\n", r.Query, len(r.Articles))
		for _, a := range r.Articles {
			fmt.Printf("  %s  /blog/%s\n", highlight(a.Title, r.Query), a.Slug)
			if a.Excerpt != "" {
				fmt.Printf("    %s\n", highlight(a.Excerpt, r.Query))
			}
		}
	}
}

// highlight переводит <mark> в ANSI-подсветку и снимает HTML-экранирование.
func highlight(text, q string) string {
	return html.UnescapeString(terminalMarks.Replace(client.Highlight(text, q)))
}
