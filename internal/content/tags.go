package content

import "strings"

// relevantTags is the allow-list of topic tags worth carrying over to the
// CMS. Anything outside this set is dropped during normalization.
var relevantTags = map[string]struct{}{
	// DevOps & cloud
	"kubernetes": {}, "devops": {}, "cloud-computing": {}, "docker": {}, "ci-cd": {},
	"aws": {}, "azure": {}, "gcp": {}, "terraform": {}, "ansible": {}, "jenkins": {},

	// Automation & integration
	"n8n": {}, "api-integration": {}, "api": {}, "rest": {}, "graphql": {}, "webhook": {},
	"automation": {}, "microservices": {}, "serverless": {},

	// Full-stack development
	"full-stack": {}, "full-stack-developer": {}, "backend-development": {},
	"front-end-development": {}, "frontend": {}, "backend": {},

	// Frameworks & libraries
	"nextjs": {}, "react": {}, "vue": {}, "angular": {}, "laravel": {}, "spring-boot": {},
	"django": {}, "express": {}, "fastapi": {}, "rails": {},

	// Languages
	"javascript": {}, "typescript": {}, "python": {}, "java": {}, "kotlin": {},
	"swift": {}, "golang": {}, "rust": {}, "php": {}, "ruby": {}, "c#": {}, "c++": {},
	"programming-languages": {}, "programming": {}, "coding": {},

	// Mobile
	"android": {}, "ios": {}, "react-native": {}, "flutter": {}, "xamarin": {},

	// AI & ML
	"artificial-intelligence": {}, "ai": {}, "deep-learning": {}, "llm": {},
	"machine-learning": {}, "generative-ai": {}, "generative-ai-tools": {},
	"chatgpt": {}, "neural-networks": {}, "nlp": {}, "computer-vision": {},

	// Web
	"web-development": {}, "responsive-design": {}, "pwa": {}, "spa": {},
	"web-performance": {}, "web-security": {},

	// Databases
	"database": {}, "postgresql": {}, "mongodb": {}, "redis": {}, "mysql": {},
	"nosql": {}, "sql": {}, "elasticsearch": {}, "cassandra": {},

	// Misc
	"tech": {}, "software-development": {}, "data-science": {}, "blockchain": {},
	"cybersecurity": {}, "iot": {}, "big-data": {}, "analytics": {},
}

// categoryEntry pairs a normalized tag (or title keyword) with the CMS
// category it maps to. A slice, not a map: title scanning must be
// deterministic, first match wins.
type categoryEntry struct {
	keyword  string
	category string
}

var categoryEntries = []categoryEntry{
	{"ai", "Inteligência Artificial"},
	{"artificial-intelligence", "Inteligência Artificial"},
	{"machine-learning", "Machine Learning"},
	{"deep-learning", "Deep Learning"},
	{"programming", "Programação"},
	{"javascript", "JavaScript"},
	{"python", "Python"},
	{"react", "React"},
	{"nodejs", "Node.js"},
	{"web-development", "Desenvolvimento Web"},
	{"backend", "Backend"},
	{"frontend", "Frontend"},
	{"devops", "DevOps"},
	{"cloud", "Cloud Computing"},
	{"docker", "Docker"},
	{"kubernetes", "Kubernetes"},
	{"data-science", "Data Science"},
	{"database", "Banco de Dados"},
}

// DefaultCategory is assigned when neither tags nor title match any mapping.
const DefaultCategory = "Tecnologia"

// defaultTags backstop articles whose tag set intersects nothing relevant.
var defaultTags = []string{"tech", "programming"}

// maxTags caps how many normalized tags an article carries forward.
const maxTags = 5

// tagDisplayNames maps normalized tags to their Portuguese display form used
// when creating CMS terms. Tags without an entry keep their normalized form.
var tagDisplayNames = map[string]string{
	// Languages
	"javascript": "JavaScript", "python": "Python", "java": "Java",
	"typescript": "TypeScript", "php": "PHP", "ruby": "Ruby",
	"golang": "Go", "rust": "Rust", "kotlin": "Kotlin", "swift": "Swift",
	"c++": "C++", "c#": "C#",

	// Development
	"programming": "Programação", "coding": "Codificação",
	"software-development": "Desenvolvimento de Software",
	"web-development":      "Desenvolvimento Web",
	"mobile-development":   "Desenvolvimento Mobile",
	"frontend":             "Frontend", "backend": "Backend",
	"full-stack": "Full Stack", "api": "API", "rest-api": "API REST",
	"graphql": "GraphQL",

	// Frameworks & libraries
	"react": "React", "angular": "Angular", "vue": "Vue.js",
	"nextjs": "Next.js", "nodejs": "Node.js", "express": "Express.js",
	"django": "Django", "flask": "Flask", "spring": "Spring",
	"laravel": "Laravel", "rails": "Ruby on Rails",

	// DevOps & cloud
	"devops": "DevOps", "docker": "Docker", "kubernetes": "Kubernetes",
	"aws": "AWS", "azure": "Azure", "google-cloud": "Google Cloud",
	"cloud-computing": "Computação em Nuvem", "ci-cd": "CI/CD",
	"microservices": "Microsserviços", "serverless": "Serverless",

	// Databases
	"database": "Banco de Dados", "sql": "SQL", "nosql": "NoSQL",
	"mongodb": "MongoDB", "postgresql": "PostgreSQL", "mysql": "MySQL",
	"redis": "Redis",

	// AI & data
	"artificial-intelligence": "Inteligência Artificial", "ai": "IA",
	"machine-learning": "Aprendizado de Máquina",
	"deep-learning":    "Aprendizado Profundo",
	"data-science":     "Ciência de Dados", "data-analysis": "Análise de Dados",
	"big-data": "Big Data", "neural-networks": "Redes Neurais", "nlp": "PLN",

	// Misc
	"technology": "Tecnologia", "tech": "Tech", "tutorial": "Tutorial",
	"tips": "Dicas", "best-practices": "Melhores Práticas",
	"performance": "Desempenho", "security": "Segurança",
	"testing": "Testes", "debugging": "Depuração",
	"optimization": "Otimização", "architecture": "Arquitetura",
	"design-patterns": "Padrões de Design", "clean-code": "Código Limpo",
	"refactoring": "Refatoração", "agile": "Ágil", "scrum": "Scrum",
	"git": "Git", "github": "GitHub", "open-source": "Código Aberto",
	"startup": "Startup", "productivity": "Produtividade",
	"automation": "Automação",
}

// normalizeTag lowercases a raw tag and converts spaces and underscores to
// hyphens, the canonical form used by the allow-list and mappings.
func normalizeTag(tag string) string {
	t := strings.ToLower(tag)
	t = strings.ReplaceAll(t, " ", "-")
	return strings.ReplaceAll(t, "_", "-")
}

// NormalizeTags intersects the article's raw tags with the allow-list,
// preserving input order. When nothing survives the intersection the default
// tag pair is substituted so posts never go out untagged. The result is
// capped at maxTags entries.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, raw := range tags {
		t := normalizeTag(raw)
		if _, ok := relevantTags[t]; ok {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = append(out, defaultTags...)
	}
	if len(out) > maxTags {
		out = out[:maxTags]
	}
	return out
}

// DetermineCategory picks the CMS category for an article. Normalized tags
// are consulted first; when none match, the lowercased title is scanned for
// category keywords in declaration order. Articles matching nothing land in
// DefaultCategory.
func DetermineCategory(tags []string, title string) string {
	for _, raw := range tags {
		t := normalizeTag(raw)
		for _, e := range categoryEntries {
			if e.keyword == t {
				return e.category
			}
		}
	}
	title = strings.ToLower(title)
	for _, e := range categoryEntries {
		if strings.Contains(title, e.keyword) {
			return e.category
		}
	}
	return DefaultCategory
}

// DisplayTag returns the Portuguese display name for a normalized tag,
// falling back to the tag itself.
func DisplayTag(tag string) string {
	if name, ok := tagDisplayNames[normalizeTag(tag)]; ok {
		return name
	}
	return tag
}
