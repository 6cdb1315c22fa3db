package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/validate"
	"gopkg.in/yaml.v3"
)

// CaseFile 批量提交案例的 YAML 文件
type CaseFile struct {
	Cases []CaseSpec `yaml:"cases"`
}

// CaseSpec 单个案例
type CaseSpec struct {
	CaseType        string   `yaml:"case_type"` // 类型 id 或名称
	CaseName        string   `yaml:"case_name"`
	Country         string   `yaml:"country"`
	Region          string   `yaml:"region"`
	Address         string   `yaml:"address"`
	Description     string   `yaml:"description"`      // 与 description_path 二选一
	DescriptionPath string   `yaml:"description_path"` // .txt 或 .md
	Files           []string `yaml:"files"`            // 相对路径相对于 YAML 文件所在目录
}

// LoadCaseFile 读取并解析 YAML，文件路径转换为绝对路径
func LoadCaseFile(path string) (*CaseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer el archivo YAML: %w", err)
	}
	var file CaseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("no se pudo analizar el archivo YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i := range file.Cases {
		c := &file.Cases[i]
		for j, f := range c.Files {
			c.Files[j] = resolve(base, f)
		}
		if c.DescriptionPath != "" {
			c.DescriptionPath = resolve(base, c.DescriptionPath)
		}
	}
	return &file, nil
}

func resolve(base, p string) string {
	if strings.HasPrefix(p, "~/") || filepath.IsAbs(p) {
		return validate.EnsureAbsPath(p)
	}
	return filepath.Join(base, p)
}

// Form 转换为校验器使用的表单，description_path 会被读取
func (c *CaseSpec) Form() (validate.Form, error) {
	desc := c.Description
	if c.DescriptionPath != "" {
		data, err := os.ReadFile(c.DescriptionPath)
		if err != nil {
			return nil, fmt.Errorf("description_path: %w", err)
		}
		desc = string(data)
	}
	return validate.Form{
		validate.FieldCaseType:    c.CaseType,
		validate.FieldCaseName:    c.CaseName,
		validate.FieldCountry:     c.Country,
		validate.FieldRegion:      c.Region,
		validate.FieldAddress:     c.Address,
		validate.FieldDescription: strings.TrimSpace(desc),
	}, nil
}

// Attachments 附件列表
func (c *CaseSpec) Attachments() []lib.Attachment {
	out := make([]lib.Attachment, 0, len(c.Files))
	for i, p := range c.Files {
		var size int64
		if st, err := os.Stat(p); err == nil {
			size = st.Size()
		}
		name := filepath.Base(p)
		out = append(out, lib.Attachment{
			LocalId: fmt.Sprintf("%d", i),
			Path:    p,
			Name:    name,
			Size:    size,
			Kind:    lib.DetectKind(name, ""),
		})
	}
	return out
}

var caseFields = []string{
	validate.FieldCaseType,
	validate.FieldCaseName,
	validate.FieldCountry,
	validate.FieldAddress,
	validate.FieldDescription,
}

// Validate 在任何写入之前用同一套规则校验全部案例
func (f *CaseFile) Validate() error {
	if len(f.Cases) == 0 {
		return fmt.Errorf("el archivo debe contener al menos un caso")
	}
	for i := range f.Cases {
		c := &f.Cases[i]
		prefix := fmt.Sprintf("caso %d (%s)", i+1, c.CaseName)
		if c.Description != "" && c.DescriptionPath != "" {
			return fmt.Errorf("%s: description y description_path no pueden usarse a la vez", prefix)
		}
		form, err := c.Form()
		if err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		for _, field := range caseFields {
			if msg := validate.Field(field, form[field], form); msg != "" {
				return fmt.Errorf("%s: %s: %s", prefix, field, msg)
			}
		}
		for _, p := range c.Files {
			if _, err := validate.AttachablePath(p); err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
		}
		refs := make([]validate.FileRef, 0, len(c.Files))
		for _, a := range c.Attachments() {
			refs = append(refs, validate.FileRef{Name: a.Name, Kind: a.Kind})
		}
		if errs, _ := validate.Files(refs); len(errs) > 0 {
			return fmt.Errorf("%s: %s", prefix, strings.Join(errs, "; "))
		}
	}
	return nil
}
