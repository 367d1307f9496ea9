package domain

import "reflect"

// SectionToggle is embedded by every page section
type SectionToggle struct {
	Enabled bool `json:"enabled"`
}

// MediaReference describes a backend-hosted asset (image, document).
// URL may be relative to the CMS API origin.
type MediaReference struct {
	ID       string `json:"id,omitempty"`
	URL      string `json:"url"`
	FileName string `json:"fileName,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// HeroSection is the landing banner
type HeroSection struct {
	SectionToggle
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	CTALabel string          `json:"ctaLabel"`
	CTAHref  string          `json:"ctaHref"`
	Image    *MediaReference `json:"image,omitempty"`
}

// AboutSection holds the biography block and the downloadable CV
type AboutSection struct {
	SectionToggle
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Bullets     []string        `json:"bullets"`
	Image       *MediaReference `json:"image,omitempty"`
	CVDocument  *MediaReference `json:"cvDocument,omitempty"`
}

// CardItem is a utility or portfolio entry. Slice order is display order.
type CardItem struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tag         string          `json:"tag,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Image       *MediaReference `json:"image,omitempty"`
	URL         string          `json:"url,omitempty"`
}

// CardsSection is a titled list of cards (utilities, portfolio)
type CardsSection struct {
	SectionToggle
	Title        string     `json:"title"`
	Subtitle     string     `json:"subtitle,omitempty"`
	Items        []CardItem `json:"items"`
	ShowViewAll  bool       `json:"showViewAll,omitempty"`
	ViewAllLabel string     `json:"viewAllLabel,omitempty"`
}

// ExperienceItem is one position in the work history
type ExperienceItem struct {
	ID      string   `json:"id"`
	Role    string   `json:"role"`
	Company string   `json:"company"`
	Period  string   `json:"period"`
	Points  []string `json:"points"`
}

// ExperienceSection lists positions in display order
type ExperienceSection struct {
	SectionToggle
	Title string           `json:"title"`
	Items []ExperienceItem `json:"items"`
}

// ContactSection introduces the contact form
type ContactSection struct {
	SectionToggle
	Title string `json:"title"`
	Blurb string `json:"blurb"`
}

// Content is the full site content document.
// It is treated as an immutable snapshot: callers replace it wholesale and
// use Clone when they need a copy they can hand out.
type Content struct {
	Hero       HeroSection       `json:"hero"`
	About      AboutSection      `json:"about"`
	Experience ExperienceSection `json:"experience"`
	Utilities  CardsSection      `json:"utilities"`
	Portfolio  CardsSection      `json:"portfolio"`
	Contact    ContactSection    `json:"contact"`
}

// IsEmpty reports whether the document carries no field at all,
// which is what a null or {} payload decodes to
func (c Content) IsEmpty() bool {
	return reflect.ValueOf(c).IsZero()
}

// Clone returns a deep copy of the document
func (c Content) Clone() Content {
	out := c

	out.Hero.Image = c.Hero.Image.Clone()
	out.About.Bullets = cloneStrings(c.About.Bullets)
	out.About.Image = c.About.Image.Clone()
	out.About.CVDocument = c.About.CVDocument.Clone()

	if c.Experience.Items != nil {
		out.Experience.Items = make([]ExperienceItem, len(c.Experience.Items))
		for i, item := range c.Experience.Items {
			item.Points = cloneStrings(item.Points)
			out.Experience.Items[i] = item
		}
	}

	out.Utilities = c.Utilities.clone()
	out.Portfolio = c.Portfolio.clone()
	return out
}

func (s CardsSection) clone() CardsSection {
	out := s
	if s.Items != nil {
		out.Items = make([]CardItem, len(s.Items))
		for i, item := range s.Items {
			item.Image = item.Image.Clone()
			out.Items[i] = item
		}
	}
	return out
}

// Clone returns a copy of the reference (nil stays nil)
func (m *MediaReference) Clone() *MediaReference {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// DefaultContent returns a fresh copy of the compiled-in content document.
// It is what the page renders when the content API is unreachable.
func DefaultContent() Content {
	return Content{
		Hero: HeroSection{
			SectionToggle: SectionToggle{Enabled: true},
			Title:         "Andrian Kurnia Aji",
			Subtitle:      "Software Engineer",
			CTALabel:      "Contact",
			CTAHref:       "#contact",
		},
		About: AboutSection{
			SectionToggle: SectionToggle{Enabled: true},
			Title:         "About",
			Description:   "Software engineer with 2+ years shipping reliable banking platforms. Focused on dependable delivery and measurable outcomes.",
			Bullets: []string{
				"Design Golang microservices for safe deposit, queueing, and biometric flows.",
				"Automated schedulers, monitoring dashboards, and data workflows.",
				"Delivered low-code field reporting tools.",
			},
		},
		Experience: ExperienceSection{
			SectionToggle: SectionToggle{Enabled: true},
			Title:         "Experience",
			Items: []ExperienceItem{
				{
					ID:      "bri-backend",
					Role:    "Backend Developer",
					Company: "PT Bank Rakyat Indonesia (BRI)",
					Period:  "Dec 2023 - Present",
					Points: []string{
						"Delivered Golang microservices for safe deposit box registration, visitor tracking, and rental renewals that interoperate with BRI core banking via gRPC and REST.",
						"Built branch queueing and biometric validation services using Redis, RabbitMQ, and Minio to balance workloads and harden security at scale.",
						"Optimised teller and customer service analytics by parallelising heavy SQL workloads with goroutines and connection pooling.",
						"Migrated millions of SDB records from legacy systems, boosting pipeline throughput from ~100 to ~3000 boxes per batch with automated validation.",
					},
				},
				{
					ID:      "bank-raya",
					Role:    "Backend Engineer",
					Company: "PT Bank Raya Indonesia Tbk",
					Period:  "Apr 2023 - Oct 2023",
					Points: []string{
						"Implemented Google Cloud based auction and monitoring services using Pub/Sub, Scheduler, BigQuery, and PostgreSQL.",
						"Automated renewal reminders with dynamic schedulers so operational teams no longer manage manual jobs.",
						"Provided job dashboards that surface pending, failed, and successful workloads across distributed databases.",
					},
				},
				{
					ID:      "phe-fullstack",
					Role:    "Fullstack Developer",
					Company: "PT Pertamina Hulu Energi",
					Period:  "Sep 2022 - Mar 2023",
					Points: []string{
						"Delivered Promyst, a low-code web app for offshore field staff to capture operational data using Code On Time and .NET.",
						"Collaborated with cross-functional teams to translate field requirements into performant forms backed by SQL Server.",
						"Introduced structured workflows that improved data turnaround for HQ decision makers.",
					},
				},
				{
					ID:      "diskominfo-intern",
					Role:    "Intern Web Developer",
					Company: "Diskominfo Tangerang",
					Period:  "Sep 2021 - Feb 2022",
					Points: []string{
						"Helped civil servants adopt the Simpatik portal by building new modules and training end users.",
						"Collaborated on UX improvements and presented the platform to stakeholders across the Tangerang government.",
					},
				},
				{
					ID:      "esri-intern",
					Role:    "Intern GIS Analyst",
					Company: "Esri Indonesia (Binus Collaboration)",
					Period:  "Feb 2021 - Feb 2022",
					Points: []string{
						"Researched, cleansed, and mapped geospatial datasets in ArcGIS to support campus-industry projects.",
						"Produced thematic maps and documentation that accelerated downstream analysis by partner teams.",
					},
				},
			},
		},
		Utilities: CardsSection{
			SectionToggle: SectionToggle{Enabled: true},
			Title:         "Games & Utilities",
			Subtitle:      "Hands-on tools and play spaces I tinker with during creative breaks.",
			Items:         []CardItem{},
			ShowViewAll:   true,
			ViewAllLabel:  "Show all 5 tools",
		},
		Portfolio: CardsSection{
			SectionToggle: SectionToggle{Enabled: true},
			Title:         "Portfolio",
			Subtitle:      "A few projects I've worked on recently.",
			Items:         []CardItem{},
			ShowViewAll:   true,
			ViewAllLabel:  "Show all 5 projects",
		},
		Contact: ContactSection{
			SectionToggle: SectionToggle{Enabled: true},
			Title:         "Get in touch",
			Blurb:         "Ready to collaborate? Send me a message and I'll reply as soon as I can.",
		},
	}
}
