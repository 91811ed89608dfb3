package llm

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the system prompts of every rewrite step.
type Prompts struct {
	Clean        string   `yaml:"clean"`
	Title        string   `yaml:"title"`
	Content      string   `yaml:"content"`
	Tags         string   `yaml:"tags"`
	Status       string   `yaml:"status"`
	Commentators []string `yaml:"commentators"`
}

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() Prompts {
	return Prompts{
		Clean: "請將使用者提供的新聞內文中與主題無關的部分（如廣告、無關段落等）移除，" +
			"其他部分維持原文。除此之外不要輸出其他内容。",
		Title: "根據以下的新聞標題和內文，生成一個新的標題。除此之外不要輸出其他内容。" +
			"新標題應該能夠提供足夠的資訊，並且避免使用誇張或吸引點擊的詞語。",
		Content: "根據以下的新聞內文，生成一個新的內文。新內文應該易懂、簡潔，並避免使用多餘的字詞和廢話。" +
			"重要的詳細資訊仍然要保留，但是可以用分行或簡化或Discord可以渲染的方式呈現。除此之外不要輸出其他内容。",
		Tags: "根據以下的新聞內文，從提供的標籤列表中選擇適合的標籤（不僅限一個）。" +
			"返回一個JSON格式的列表，每個元素是一個標籤。除此之外不要輸出其他内容，不需要用codeblock框住。",
		Status: "根據使用者提供的新聞標題，寫一句不超過二十個字的Discord個人狀態。" +
			"如果適合描述成在玩某個遊戲，請以「正在玩」開頭。除此之外不要輸出其他内容。",
		Commentators: []string{
			"你是一位犀利的新聞評論員，請用一到兩句口語化的繁體中文，對使用者提供的新聞發表看法。",
		},
	}
}

// LoadPrompts reads a YAML prompt file. Missing keys keep their built-in
// value; a missing file yields the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("[llm] prompt file %s not found, using built-in prompts", path)
			return prompts, nil
		}
		return prompts, fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}

	var custom Prompts
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return prompts, fmt.Errorf("failed to parse prompt file %s: %w", path, err)
	}
	prompts.merge(custom)
	return prompts, nil
}

func (p *Prompts) merge(other Prompts) {
	if other.Clean != "" {
		p.Clean = other.Clean
	}
	if other.Title != "" {
		p.Title = other.Title
	}
	if other.Content != "" {
		p.Content = other.Content
	}
	if other.Tags != "" {
		p.Tags = other.Tags
	}
	if other.Status != "" {
		p.Status = other.Status
	}
	if len(other.Commentators) > 0 {
		p.Commentators = other.Commentators
	}
}

// Commentator returns the commentator persona at index, or the first one
// when index is out of range.
func (p Prompts) Commentator(index int) string {
	if len(p.Commentators) == 0 {
		return DefaultPrompts().Commentators[0]
	}
	if index < 0 || index >= len(p.Commentators) {
		log.Printf("[llm] commentator index %d out of range, using 0", index)
		index = 0
	}
	return p.Commentators[index]
}
