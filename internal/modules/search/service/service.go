package service

import (
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const achievementsIndex = "achievements"

type SearchService interface {
	IndexAchievement(ach *entity.Achievement) error
	GenerateSearchToken(isModerator bool) (string, error)
}

type searchService struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *searchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{Limit: 20})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "TenantTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)
	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        "TenantTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{achievementsIndex},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"active"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(achievementsIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update achievements filterable attributes: %v", err)
	}

	sortableAttrs := []string{"points", "created_at"}
	if _, err := s.client.Index(achievementsIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update achievements sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliAchievementDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Active      bool   `json:"active"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *searchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexAchievement(ach *entity.Achievement) error {
	doc := meiliAchievementDoc{
		ID:          ach.ID,
		Title:       ach.Title,
		Description: s.cleanContentForIndex(ach.Description),
		Points:      ach.Points,
		Active:      ach.Active,
		CreatedAt:   ach.CreatedAt.Unix(),
	}

	task, err := s.client.Index(achievementsIndex).AddDocuments([]meiliAchievementDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed achievement %s, task id: %d", ach.ID, task.TaskUID)
	return nil
}

// GenerateSearchToken issues a tenant token for client-side search.
// Moderators see the whole catalog including retired entries; everyone else
// is filtered to active achievements.
func (s *searchService) GenerateSearchToken(isModerator bool) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	searchRules := map[string]any{
		achievementsIndex: map[string]any{"filter": "active = true"},
	}
	if isModerator {
		searchRules[achievementsIndex] = map[string]any{"filter": nil}
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func strPtr(s string) *string {
	return &s
}
