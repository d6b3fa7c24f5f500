package handlers

// HomeData is the view model for the landing page sections.
type HomeData struct {
	BottleImage string
	Showcase    []ShowcaseItem
	Modernize   []Feature
	Gallery     []Image
}

// ShowcaseItem is one panel of the product showcase.
type ShowcaseItem struct {
	TitleKey    string
	SubtitleKey string
	BodyKey     string
	Image       string
	Highlights  []Highlight
}

// Highlight is a short titled note inside a showcase panel.
type Highlight struct {
	TitleKey string
	BodyKey  string
}

// Feature is a labelled capability in the modernize section.
type Feature struct {
	LabelKey string
	Icon     string
}

// Image is a decorative picture with translated alt text.
type Image struct {
	Src    string
	AltKey string
}

// BuildHomeData constructs the landing page view model.
func BuildHomeData() *HomeData {
	return &HomeData{
		BottleImage: "/assets/img/bottle.svg",
		Showcase: []ShowcaseItem{
			{
				TitleKey:    "home.showcase.essence.title",
				SubtitleKey: "home.showcase.essence.subtitle",
				BodyKey:     "home.showcase.essence.body",
				Image:       "/assets/img/showcase-essence.svg",
				Highlights: []Highlight{
					{TitleKey: "home.showcase.essence.h1.title", BodyKey: "home.showcase.essence.h1.body"},
					{TitleKey: "home.showcase.essence.h2.title", BodyKey: "home.showcase.essence.h2.body"},
				},
			},
			{
				TitleKey:    "home.showcase.craft.title",
				SubtitleKey: "home.showcase.craft.subtitle",
				BodyKey:     "home.showcase.craft.body",
				Image:       "/assets/img/showcase-craft.svg",
				Highlights: []Highlight{
					{TitleKey: "home.showcase.craft.h1.title", BodyKey: "home.showcase.craft.h1.body"},
					{TitleKey: "home.showcase.craft.h2.title", BodyKey: "home.showcase.craft.h2.body"},
				},
			},
			{
				TitleKey:    "home.showcase.final.title",
				SubtitleKey: "home.showcase.final.subtitle",
				BodyKey:     "home.showcase.final.body",
				Image:       "/assets/img/showcase-final.svg",
			},
		},
		Modernize: []Feature{
			{LabelKey: "home.modernize.lab", Icon: "flask"},
			{LabelKey: "home.modernize.crystal", Icon: "gem"},
			{LabelKey: "home.modernize.distribution", Icon: "truck"},
			{LabelKey: "home.modernize.quality", Icon: "certificate"},
		},
		Gallery: []Image{
			{Src: "/assets/img/lab.svg", AltKey: "home.modernize.lab"},
			{Src: "/assets/img/crystal.svg", AltKey: "home.modernize.crystal"},
			{Src: "/assets/img/distribution.svg", AltKey: "home.modernize.distribution"},
			{Src: "/assets/img/quality.svg", AltKey: "home.modernize.quality"},
		},
	}
}

// BlogData is the view model for the blog placeholder.
type BlogData struct {
	LaunchKey string
}

// BuildBlogData returns the "Coming Soon" page model.
func BuildBlogData() *BlogData {
	return &BlogData{LaunchKey: "blog.launch"}
}

// ContactData lists the contact channels.
type ContactData struct {
	Channels []Channel
}

// Channel is one way to reach the distillery.
type Channel struct {
	ID       string
	TitleKey string
	BodyKey  string
	Href     string
	Label    string
}

const (
	ContactEmail    = "contact@ladrillocristalpuro.com"
	InstagramURL    = "https://instagram.com/ladrillocristalpuro"
	InstagramHandle = "@ladrillocristalpuro"
)

// BuildContactData returns the contact page model.
func BuildContactData() *ContactData {
	return &ContactData{
		Channels: []Channel{
			{ID: "email", TitleKey: "contact.email.title", BodyKey: "contact.email.body", Href: "mailto:" + ContactEmail, Label: ContactEmail},
			{ID: "instagram", TitleKey: "contact.instagram.title", BodyKey: "contact.instagram.body", Href: InstagramURL, Label: InstagramHandle},
			{ID: "private", TitleKey: "contact.private.title", BodyKey: "contact.private.body", Href: "mailto:" + ContactEmail + "?subject=Private%20collections", Label: ContactEmail},
		},
	}
}
