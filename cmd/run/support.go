package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/statlab"
	"github.com/zintix-labs/statlab/params"
	"github.com/zintix-labs/statlab/params/configs"
	"github.com/zintix-labs/statlab/sdk/dist"
	"github.com/zintix-labs/statlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	cfgPath   string
	draws     int
	seed      int64
	output    string
	dumpPath  string
	pprofmode string
}

// 抽樣數低於這個值就不顯示進度條（一瞬間就結束，刷條反而是雜訊）
const showBarThreshold = 100000

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.cfgPath, "c", "", "experiment yaml path (empty = embedded default)")
	flag.IntVar(&cfg.draws, "draws", 0, "override draws in config (0 = use config)")
	flag.Int64Var(&cfg.seed, "seed", -1, "uint32 seed override (-1 = config / auto)")
	flag.StringVar(&cfg.output, "o", "table", "output: table|json|yaml")
	flag.StringVar(&cfg.dumpPath, "dump", "", "write source empirical cdf to file (gnuplot format)")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// 這裡解析設定檔並執行實驗：抽樣 → 摘要 →（可選）比較
func executeExperiment() {
	exp := loadExperiment()
	seed := resolveSeed(exp)

	lab := statlab.NewAuto()

	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	p.Printf("%s[EXP:%s] [SOURCE:%s] [DRAWS:%d] [SEED:%d]%s\n", green, exp.Name, exp.Source.Kind, exp.Draws, seed, reset)

	src, used, err := drawSamples(lab, &exp.Source, exp.Draws, seed)
	if err != nil {
		log.Fatal(err)
	}

	sum := stats.Summarize(exp.Name, src)
	renderSummary(sum)

	if cfg.dumpPath != "" {
		if err := dumpCDF(src, cfg.dumpPath); err != nil {
			log.Fatal(err)
		}
		fmt.Println("cdf dump written to " + cfg.dumpPath)
	}

	if exp.Against != nil {
		// against 用派生 seed，確保兩邊的流水彼此獨立但整體仍可重現
		agn, agnUsed, err := drawSamples(lab, exp.Against, exp.Draws, seed+1)
		if err != nil {
			log.Fatal(err)
		}
		used += agnUsed

		r, err := lab.CompareSamples(src, agn)
		if err != nil {
			log.Fatal(err)
		}
		rep := stats.NewCompareReport(exp.Name, r)
		renderReport(rep, used)
	}
}

// loadExperiment 讀取實驗設定：-c 指定路徑，否則用內嵌的 default.yaml。
func loadExperiment() *params.Experiment {
	var data []byte
	var err error
	if cfg.cfgPath != "" {
		data, err = os.ReadFile(cfg.cfgPath)
	} else {
		data, err = configs.FS.ReadFile("default.yaml")
	}
	if err != nil {
		log.Fatal(err)
	}
	exp, err := params.GetExperimentByYAML(data)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.draws > 0 {
		exp.Draws = cfg.draws
	}
	return exp
}

// resolveSeed 決定出生 seed：flag 覆寫 > 設定檔（非 0）> crypto/rand 自動。
func resolveSeed(exp *params.Experiment) uint32 {
	if cfg.seed >= 0 && cfg.seed <= int64(^uint32(0)) {
		return uint32(cfg.seed)
	}
	if exp.Seed != 0 {
		return exp.Seed
	}
	seed, err := statlab.AutoSeed()
	if err != nil {
		log.Fatal(err)
	}
	return seed
}

// drawSamples 依分佈描述抽 n 個樣本，大量抽樣時顯示進度條。
// model 分佈會先讀模型樣本檔，走反變換抽樣。
func drawSamples(lab *statlab.Lab, d *params.Distribution, n int, seed uint32) ([]float64, time.Duration, error) {
	out := make([]float64, 0, n)
	if d.Kind == params.KindModel {
		model, err := loadModelFile(d.ModelFile)
		if err != nil {
			return nil, 0, err
		}
		s, err := lab.NewModelSampler(model, seed)
		if err != nil {
			return nil, 0, err
		}
		bar := newBar(n)
		for i := 0; i < n; i++ {
			out = append(out, s.Draw())
			bar.Increment()
		}
		used := time.Since(bar.StartTime())
		bar.Finish()
		return out, used, nil
	}

	rnd := lab.NewRand(seed)
	bar := newBar(n)
	// 分批抽，讓進度條有東西可刷又不至於逐筆 callback
	const chunk = 4096
	for len(out) < n {
		c := min(chunk, n-len(out))
		batch, err := lab.Draw(d, c, rnd)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, batch...)
		bar.Add(c)
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	return out, used, nil
}

func newBar(n int) *pb.ProgressBar {
	bar := pb.StartNew(n)
	if n < showBarThreshold {
		bar.SetWriter(io.Discard)
	}
	return bar
}

// loadModelFile 讀模型樣本檔：每行（或以空白分隔）一個 float64，# 開頭視為註解。
func loadModelFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("model file %s: bad value %q: %w", path, tok, err)
			}
			samples = append(samples, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// dumpCDF 把樣本的經驗 CDF 寫成兩欄文字檔，gnuplot 可直接 plot。
func dumpCDF(samples []float64, path string) error {
	d, err := dist.NewDist1D(samples)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.Dump(f)
}

func renderSummary(sum *stats.SampleSummary) {
	switch cfg.output {
	case "json":
		if err := sum.WriteWith(os.Stdout, &stats.JsonSummaryRender{}); err != nil {
			log.Fatal(err)
		}
	case "yaml":
		if err := sum.WriteWith(os.Stdout, &stats.YAMLSummaryRender{}); err != nil {
			log.Fatal(err)
		}
	default:
		sum.StdOut()
	}
}

func renderReport(rep *stats.CompareReport, used time.Duration) {
	switch cfg.output {
	case "json":
		if err := rep.WriteWith(os.Stdout, &stats.JsonCompareReportRender{}); err != nil {
			log.Fatal(err)
		}
	case "yaml":
		if err := rep.WriteWith(os.Stdout, &stats.YAMLCompareReportRender{}); err != nil {
			log.Fatal(err)
		}
	default:
		rep.StdOut(used)
	}
}
