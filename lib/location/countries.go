package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Country 国家目录中的一项
type Country struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Region     string `json:"region,omitempty"`
	Subregion  string `json:"subregion,omitempty"`
	Capital    string `json:"capital,omitempty"`
	Population int64  `json:"population,omitempty"`
}

// FallbackCountries 网络不可用时使用的内置列表
var FallbackCountries = []Country{
	{Name: "Argentina", Code: "AR"},
	{Name: "Brasil", Code: "BR"},
	{Name: "Chile", Code: "CL"},
	{Name: "Colombia", Code: "CO"},
	{Name: "México", Code: "MX"},
	{Name: "Perú", Code: "PE"},
	{Name: "Uruguay", Code: "UY"},
	{Name: "Venezuela", Code: "VE"},
	{Name: "España", Code: "ES"},
	{Name: "Francia", Code: "FR"},
	{Name: "Italia", Code: "IT"},
	{Name: "Alemania", Code: "DE"},
	{Name: "Reino Unido", Code: "GB"},
	{Name: "Estados Unidos", Code: "US"},
	{Name: "Canadá", Code: "CA"},
	{Name: "Australia", Code: "AU"},
	{Name: "Japón", Code: "JP"},
	{Name: "China", Code: "CN"},
	{Name: "India", Code: "IN"},
	{Name: "Rusia", Code: "RU"},
	{Name: "Sudáfrica", Code: "ZA"},
	{Name: "Egipto", Code: "EG"},
}

type Options struct {
	// BaseURL 为空时只返回内置列表
	BaseURL   string
	TTL       time.Duration
	Timeout   time.Duration
	CachePath string
}

// Catalog 带缓存的国家目录，失败的请求不会写入缓存
type Catalog struct {
	opts       Options
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	countries []Country
	fetchedAt time.Time
}

func NewCatalog(opts Options) *Catalog {
	return &Catalog{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		now:        time.Now,
	}
}

type diskCache struct {
	FetchedAt time.Time `json:"fetched_at"`
	Countries []Country `json:"countries"`
}

// Countries 返回按西班牙语排序的国家列表，第二个返回值表示是否为内置列表
func (c *Catalog) Countries(ctx context.Context) ([]Country, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh(c.fetchedAt) && len(c.countries) > 0 {
		return c.countries, false
	}
	if cached, ok := c.readDisk(); ok {
		c.countries, c.fetchedAt = cached.Countries, cached.FetchedAt
		return c.countries, false
	}
	if c.opts.BaseURL == "" {
		return sortByName(FallbackCountries), true
	}

	countries, err := c.fetch(ctx)
	if err != nil {
		logs.Warnf("fetch countries failed, using built-in list: %v\n", err)
		return sortByName(FallbackCountries), true
	}
	c.countries, c.fetchedAt = countries, c.now()
	c.writeDisk()
	return c.countries, false
}

func (c *Catalog) fresh(at time.Time) bool {
	if at.IsZero() {
		return false
	}
	return c.opts.TTL <= 0 || c.now().Sub(at) < c.opts.TTL
}

func (c *Catalog) readDisk() (diskCache, bool) {
	var cached diskCache
	if c.opts.CachePath == "" {
		return cached, false
	}
	data, err := os.ReadFile(c.opts.CachePath)
	if err != nil {
		return cached, false
	}
	if err := json.Unmarshal(data, &cached); err != nil {
		logs.Debugf("ignore broken countries cache %s: %v\n", c.opts.CachePath, err)
		return cached, false
	}
	if len(cached.Countries) == 0 || !c.fresh(cached.FetchedAt) {
		return cached, false
	}
	return cached, true
}

func (c *Catalog) writeDisk() {
	if c.opts.CachePath == "" {
		return
	}
	data, err := json.Marshal(diskCache{FetchedAt: c.fetchedAt, Countries: c.countries})
	if err == nil {
		err = os.MkdirAll(filepath.Dir(c.opts.CachePath), 0o755)
	}
	if err == nil {
		err = os.WriteFile(c.opts.CachePath, data, 0o644)
	}
	if err != nil {
		logs.Debugf("write countries cache failed: %v\n", err)
	}
}

type remoteCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Cca2       string   `json:"cca2"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Capital    []string `json:"capital"`
	Population int64    `json:"population"`
}

func (c *Catalog) fetch(ctx context.Context) ([]Country, error) {
	url := strings.TrimRight(c.opts.BaseURL, "/") + "/all?fields=name,cca2,region,subregion,capital,population"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("countries status %d", resp.StatusCode)
	}
	var remote []remoteCountry
	if err := json.Unmarshal(body, &remote); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	countries := make([]Country, 0, len(remote))
	for _, r := range remote {
		if r.Name.Common == "" {
			continue
		}
		country := Country{
			Name:       r.Name.Common,
			Code:       r.Cca2,
			Region:     r.Region,
			Subregion:  r.Subregion,
			Population: r.Population,
		}
		if len(r.Capital) > 0 {
			country.Capital = r.Capital[0]
		}
		countries = append(countries, country)
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("empty countries response")
	}
	return sortByName(countries), nil
}

// sortByName 返回副本，不修改传入的切片
func sortByName(countries []Country) []Country {
	sorted := make([]Country, len(countries))
	copy(sorted, countries)
	col := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		return col.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})
	return sorted
}

// Fold 去掉重音并转小写，用于匹配
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Search 按名称或代码做不区分重音和大小写的子串匹配，前缀匹配排在前面
func Search(countries []Country, query string) []Country {
	q := Fold(query)
	if q == "" {
		return countries
	}
	var prefix, contains []Country
	for _, country := range countries {
		name := Fold(country.Name)
		switch {
		case strings.HasPrefix(name, q) || strings.EqualFold(country.Code, q):
			prefix = append(prefix, country)
		case strings.Contains(name, q):
			contains = append(contains, country)
		}
	}
	return append(prefix, contains...)
}

// Names 提取国家名称，供输入框补全使用
func Names(countries []Country) []string {
	names := make([]string, len(countries))
	for i, country := range countries {
		names[i] = country.Name
	}
	return names
}
