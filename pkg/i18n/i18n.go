// Package i18n holds the user-facing API messages and resolves which of the
// supported languages a request wants.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type Key string

const (
	Unsupported Key = "unsupported"
	NotNDA      Key = "not_nda"
	NDADetected Key = "nda_detected"
	NoRisks     Key = "no_risks"
	Disclaimer  Key = "disclaimer"
)

const DefaultLanguage = "en"

// Supported lists the message languages, default first.
var Supported = []language.Tag{
	language.English,
	language.Hindi,
	language.Tamil,
	language.Telugu,
	language.Kannada,
}

var matcher = language.NewMatcher(Supported)

var messages = map[Key]map[string]string{
	Unsupported: {
		"en": "Error: Unsupported file type.",
		"hi": "त्रुटि: असमर्थित फ़ाइल प्रकार।",
		"ta": "பிழை: ஆதரிக்கப்படாத கோப்பு வகை.",
		"te": "లోపం: మద్దతు లేని ఫైల్ రకం.",
		"kn": "ದೋಷ: ಬೆಂಬಲಿಸದ ಫೈಲ್ ಮಾದರಿ.",
	},
	NotNDA: {
		"en": "This document does not seem to be an NDA.",
		"hi": "यह दस्तावेज़ NDA जैसा नहीं लगता।",
		"ta": "இந்த ஆவணம் NDA போலத் தெரியவில்லை.",
		"te": "ఈ పత్రం NDAలా కనిపించడం లేదు.",
		"kn": "ಈ ದಾಖಲೆ NDA ಆಗಿ ಕಾಣುತ್ತಿಲ್ಲ.",
	},
	NDADetected: {
		"en": "NDA detected. Analysis complete.",
		"hi": "NDA पहचाना गया। विश्लेषण पूरा हुआ।",
		"ta": "NDA கண்டறியப்பட்டது. பகுப்பாய்வு முடிந்தது.",
		"te": "NDA గుర్తించబడింది. విశ్లేషణ పూర్తయింది.",
		"kn": "NDA ಪತ್ತೆಯಾಗಿದೆ. ವಿಶ್ಲೇಷಣೆ ಪೂರ್ಣಗೊಂಡಿದೆ.",
	},
	NoRisks: {
		"en": "No high-risk clauses detected.",
		"hi": "कोई उच्च-जोखिम वाली धारा नहीं मिली।",
		"ta": "அதிக ஆபத்துள்ள பிரிவுகள் எதுவும் கண்டறியப்படவில்லை.",
		"te": "అధిక ప్రమాదం ఉన్న క్లాజులు ఏవీ కనుగొనబడలేదు.",
		"kn": "ಹೆಚ್ಚಿನ ಅಪಾಯದ ಧಾರೆಗಳು ಯಾವುದೂ ಪತ್ತೆಯಾಗಿಲ್ಲ.",
	},
	Disclaimer: {
		"en": "ClauseWise provides educational information only. This is not legal advice. Always consult a licensed attorney.",
		"hi": "ClauseWise केवल शैक्षिक जानकारी देता है। यह कानूनी सलाह नहीं है। हमेशा किसी लाइसेंस प्राप्त वकील से परामर्श करें।",
		"ta": "ClauseWise கல்வித் தகவலை மட்டுமே வழங்குகிறது. இது சட்ட ஆலோசனை அல்ல. எப்போதும் உரிமம் பெற்ற வழக்கறிஞரை அணுகவும்.",
		"te": "ClauseWise విద్యా సమాచారాన్ని మాత్రమే అందిస్తుంది. ఇది న్యాయ సలహా కాదు. ఎల్లప్పుడూ లైసెన్స్ పొందిన న్యాయవాదిని సంప్రదించండి.",
		"kn": "ClauseWise ಶೈಕ್ಷಣಿಕ ಮಾಹಿತಿಯನ್ನು ಮಾತ್ರ ಒದಗಿಸುತ್ತದೆ. ಇದು ಕಾನೂನು ಸಲಹೆ ಅಲ್ಲ. ಯಾವಾಗಲೂ ಪರವಾನಗಿ ಪಡೆದ ವಕೀಲರನ್ನು ಸಂಪರ್ಕಿಸಿ.",
	},
}

// Resolve picks a supported language code. An explicit code (e.g. a "lang"
// query parameter) wins over the Accept-Language header; anything
// unparseable or unmatched resolves to English.
func Resolve(explicit, acceptLanguage string) string {
	var tags []language.Tag
	if explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 && acceptLanguage != "" {
		parsed, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil {
			tags = parsed
		}
	}
	if len(tags) == 0 {
		return DefaultLanguage
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}
	base, _ := Supported[index].Base()
	return base.String()
}

// T returns the message for key in lang, falling back to English.
func T(lang string, key Key) string {
	byLang, ok := messages[key]
	if !ok {
		return string(key)
	}
	if msg, ok := byLang[lang]; ok {
		return msg
	}
	return byLang[DefaultLanguage]
}

// LanguageName returns the English name of a language code, e.g. "Hindi".
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return "English"
	}
	return display.English.Tags().Name(tag)
}
