package llm

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxOCRPromptRunes bounds the OCR text embedded in the prompt.
const MaxOCRPromptRunes = 4000

// BuildMenuPrompt composes the instruction sent with the menu board image. The image is the
// authority for layout and day alignment; OCR text is only a hint for blurry glyphs.
func BuildMenuPrompt(ocrText string) string {
	ocrText = strings.TrimSpace(ocrText)
	if utf8.RuneCountInString(ocrText) > MaxOCRPromptRunes {
		ocrText = string([]rune(ocrText)[:MaxOCRPromptRunes])
	}
	if ocrText == "" {
		ocrText = "(OCR 결과 없음)"
	}

	var b strings.Builder
	b.WriteString("첨부한 주간 식단표 이미지를 읽고 가격과 요일별 메뉴를 JSON으로 추출하세요.\n\n")

	b.WriteString("[OCR 참고 텍스트]\n")
	b.WriteString("아래는 같은 이미지에서 OCR로 뽑은 텍스트입니다. 글자가 흐릿할 때만 참고하세요. ")
	b.WriteString("줄 배치가 깨져 있을 수 있으므로 메뉴 위치와 요일은 반드시 이미지를 기준으로 판단하세요.\n")
	b.WriteString("<<<OCR\n")
	b.WriteString(ocrText)
	b.WriteString("\nOCR>>>\n\n")

	b.WriteString("[규칙]\n")
	for i, rule := range promptRules {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}

	b.WriteString("\n[응답 형식]\n")
	b.WriteString("다른 설명 없이 아래 구조의 JSON 객체 하나만 반환하세요. 다섯 요일 키를 모두 포함해야 합니다.\n")
	b.WriteString(responseShape)
	return b.String()
}

var promptRules = []string{
	"이미지에 보이는 글자만 옮기고 추측하지 마세요.",
	"메뉴명은 이미지에 적힌 그대로 쓰고 메뉴 하나를 배열 요소 하나로 나누세요.",
	"price.lunch 와 price.dinner 는 보이는 가격을 \"7,000원\" 형태로 쓰고, 없으면 빈 문자열(\"\")로 두세요.",
	"메뉴가 없는 요일이나 끼니는 빈 배열([])로 두세요.",
	"확실하지 않은 항목은 넣지 마세요. 예시 문구를 그대로 복사하지 마세요.",
}

const responseShape = `{
  "price": {"lunch": "", "dinner": ""},
  "menus": {
    "월": {"lunch": [], "dinner": []},
    "화": {"lunch": [], "dinner": []},
    "수": {"lunch": [], "dinner": []},
    "목": {"lunch": [], "dinner": []},
    "금": {"lunch": [], "dinner": []}
  }
}
`
