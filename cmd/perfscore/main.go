package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"

	"github.com/bitfantasy/perfeval/internal/config"
	"github.com/bitfantasy/perfeval/internal/perf/client"
	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type stdoutNotifier struct{}

func (stdoutNotifier) Alert(msg string)         { fmt.Println(msg) }
func (stdoutNotifier) Redirect(location string) { fmt.Printf("-> %s\n", location) }

func main() {
	var (
		baseURL = flag.String("base", "", "评分服务地址 (默认读取 PERF_BASE_URL)")
		token   = flag.String("token", "", "访问令牌 (默认读取 PERF_TOKEN)")
		empID   = flag.String("emp", "", "被评分员工工号")
		tableID = flag.String("table", "", "考核表 ID")
		edits   = flag.String("edits", "", "评分操作 JSON 文件，- 表示标准输入")
		dryRun  = flag.Bool("dry-run", false, "只打印提交数据，不提交")
		verbose = flag.Bool("v", false, "输出调试日志")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *baseURL == "" {
		*baseURL = cfg.Client.BaseURL
	}
	if *token == "" {
		*token = cfg.Client.Token
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("Failed to init logger: %v", err)
		}
	}
	defer logger.Sync()

	ctx := context.Background()
	c := client.New(*baseURL, *token, cfg.Client.Timeout, logger)
	session := client.NewSession(c, stdoutNotifier{}, cfg.Client.ListPage, logger)

	query := url.Values{}
	query.Set("emp_id", *empID)
	query.Set("table_id", *tableID)
	if err := session.Open(ctx, query); err != nil {
		os.Exit(1)
	}

	form := session.Form()
	printForm(form)

	if *edits != "" {
		in := os.Stdin
		if *edits != "-" {
			f, err := os.Open(*edits)
			if err != nil {
				log.Fatalf("Failed to open edits: %v", err)
			}
			defer f.Close()
			in = f
		}
		list, err := client.ReadEdits(in)
		if err != nil {
			log.Fatalf("Failed to read edits: %v", err)
		}
		if err := client.ApplyEdits(form, list); err != nil {
			log.Fatalf("Failed to apply edits: %v", err)
		}
	}

	sub, err := session.Submission()
	if err != nil {
		log.Fatalf("Failed to assemble submission: %v", err)
	}
	if err := printSubmission(os.Stdout, sub); err != nil {
		log.Fatalf("Failed to encode submission: %v", err)
	}

	if *dryRun {
		return
	}
	if err := session.Submit(ctx); err != nil {
		os.Exit(1)
	}
}

// printSubmission 输出提交数据和合计
func printSubmission(w io.Writer, sub *scoring.Submission) error {
	out, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n合计: %s\n", out, scoring.FormatScore(sub.Total()))
	return err
}

func printForm(form *scoring.Form) {
	ctx := form.Context()
	fmt.Printf("%s\n员工: %s %s (%s / %s)\n\n", form.Title(), ctx.Employee.EmpID, ctx.Employee.EmpName, ctx.Employee.Department, ctx.Employee.Position)

	for _, dim := range scoring.Dimensions {
		sec := form.Section(dim)
		if sec == nil {
			continue
		}
		fmt.Printf("[%s] 满分 %s", dim.Title(), scoring.FormatScore(sec.MaxScore))
		if sec.Notice != "" {
			fmt.Printf(" %s", sec.Notice)
		}
		fmt.Println()
		for _, row := range sec.Rows {
			if len(row.Options) > 0 {
				labels := make([]string, 0, len(row.Options))
				for _, o := range row.Options {
					labels = append(labels, o.Label)
				}
				fmt.Printf("  %s: %v\n", row.Name, labels)
				continue
			}
			fmt.Printf("  %s: 0 ~ %s\n", row.Name, scoring.FormatScore(row.Max))
		}
	}
	if form.Bonus() != nil {
		fmt.Printf("[%s]\n", scoring.BonusTitle)
	}
	fmt.Println()
}
