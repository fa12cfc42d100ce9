package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// SafetyLists are checked by the keyword safety filter, in this order.
type SafetyLists struct {
	Illegal   []string `yaml:"illegal" json:"illegal"`
	Injection []string `yaml:"injection" json:"injection"`
	Spam      []string `yaml:"spam" json:"spam"`
}

// ClassifierLists feed the intent classifier.
type ClassifierLists struct {
	Unsafe []string `yaml:"unsafe" json:"unsafe"`
	Code   []string `yaml:"code" json:"code"`
	Teach  []string `yaml:"teach" json:"teach"`
}

// Keywords is the YAML structure of the keyword file.
type Keywords struct {
	Safety     SafetyLists     `yaml:"safety" json:"safety"`
	Classifier ClassifierLists `yaml:"classifier" json:"classifier"`
}

// DefaultKeywords returns the built-in lists. A keyword file only needs to
// name the lists it wants to replace.
func DefaultKeywords() Keywords {
	return Keywords{
		Safety: SafetyLists{
			Illegal: []string{
				"make a bomb",
				"build a weapon",
				"ddos",
				"hack",
				"ddos attack",
				"malware",
				"virus",
				"ransomware",
				"botnet",
				"kill",
				"hurt someone",
				"shoot",
				"bypass payment",
				"credit card generator",
				"carding",
			},
			Injection: []string{
				"ignore previous instructions",
				"act as",
				"you are no longer an ai",
				"disable safety",
				"override",
			},
			Spam: []string{"repeat", "spam", "overload", "crash system"},
		},
		Classifier: ClassifierLists{
			Unsafe: []string{
				"hack",
				"ddos",
				"break into",
				"exploit",
				"bypass login",
				"steal",
				"illegal",
				"leak",
				"pirated",
				"malware",
				"virus",
				"keylogger",
				"token grabber",
			},
			Code:  []string{"code", "function", "class", "script", "api endpoint", "write me"},
			Teach: []string{"explain", "teach", "how does", "why does", "what is"},
		},
	}
}

// LoadKeywords reads a YAML keyword file, expanding ${ENV_VAR} references.
// An empty path returns the defaults. Lists missing from the file keep their
// default value; a list given as [] is honoured as empty.
func LoadKeywords(path string) (Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Keywords{}, fmt.Errorf("keywords: read %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))

	var f keywordFile
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return Keywords{}, fmt.Errorf("keywords: parse %s: %w", path, err)
	}
	override(&kw.Safety.Illegal, f.Safety.Illegal)
	override(&kw.Safety.Injection, f.Safety.Injection)
	override(&kw.Safety.Spam, f.Safety.Spam)
	override(&kw.Classifier.Unsafe, f.Classifier.Unsafe)
	override(&kw.Classifier.Code, f.Classifier.Code)
	override(&kw.Classifier.Teach, f.Classifier.Teach)

	kw.clean()
	return kw, nil
}

// keywordFile tells a missing list (nil) apart from an empty one.
type keywordFile struct {
	Safety struct {
		Illegal   *[]string `yaml:"illegal"`
		Injection *[]string `yaml:"injection"`
		Spam      *[]string `yaml:"spam"`
	} `yaml:"safety"`
	Classifier struct {
		Unsafe *[]string `yaml:"unsafe"`
		Code   *[]string `yaml:"code"`
		Teach  *[]string `yaml:"teach"`
	} `yaml:"classifier"`
}

func override(dst *[]string, src *[]string) {
	if src != nil {
		*dst = append([]string{}, (*src)...)
	}
}

// clean lowercases and trims every entry and drops blanks.
func (k *Keywords) clean() {
	for _, list := range []*[]string{
		&k.Safety.Illegal, &k.Safety.Injection, &k.Safety.Spam,
		&k.Classifier.Unsafe, &k.Classifier.Code, &k.Classifier.Teach,
	} {
		out := (*list)[:0]
		for _, s := range *list {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				out = append(out, s)
			}
		}
		*list = out
	}
}
