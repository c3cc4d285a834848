package urn

import "strings"

var vietnameseToLatin = map[rune]rune{
	'á': 'a', 'à': 'a', 'ả': 'a', 'ã': 'a', 'ạ': 'a',
	'ă': 'a', 'ắ': 'a', 'ằ': 'a', 'ẳ': 'a', 'ẵ': 'a', 'ặ': 'a',
	'â': 'a', 'ấ': 'a', 'ầ': 'a', 'ẩ': 'a', 'ẫ': 'a', 'ậ': 'a',
	'đ': 'd',
	'é': 'e', 'è': 'e', 'ẻ': 'e', 'ẽ': 'e', 'ẹ': 'e',
	'ê': 'e', 'ế': 'e', 'ề': 'e', 'ể': 'e', 'ễ': 'e', 'ệ': 'e',
	'í': 'i', 'ì': 'i', 'ỉ': 'i', 'ĩ': 'i', 'ị': 'i',
	'ó': 'o', 'ò': 'o', 'ỏ': 'o', 'õ': 'o', 'ọ': 'o',
	'ô': 'o', 'ố': 'o', 'ồ': 'o', 'ổ': 'o', 'ỗ': 'o', 'ộ': 'o',
	'ơ': 'o', 'ớ': 'o', 'ờ': 'o', 'ở': 'o', 'ỡ': 'o', 'ợ': 'o',
	'ú': 'u', 'ù': 'u', 'ủ': 'u', 'ũ': 'u', 'ụ': 'u',
	'ư': 'u', 'ứ': 'u', 'ừ': 'u', 'ử': 'u', 'ữ': 'u', 'ự': 'u',
	'ý': 'y', 'ỳ': 'y', 'ỷ': 'y', 'ỹ': 'y', 'ỵ': 'y',
}

// Transliterate maps Vietnamese letters to their Latin base so identifiers
// stay within the URN-safe alphabet ("đ" -> "d", "Đ" -> "D").
func Transliterate(s string) string {
	return strings.Map(func(r rune) rune {
		if latin, ok := vietnameseToLatin[r]; ok {
			return latin
		}
		if latin, ok := vietnameseToLatin[unicodeToLower(r)]; ok {
			return unicodeToUpper(latin)
		}
		return r
	}, s)
}

func unicodeToLower(r rune) rune {
	return []rune(strings.ToLower(string(r)))[0]
}

func unicodeToUpper(r rune) rune {
	return []rune(strings.ToUpper(string(r)))[0]
}
