package mongodb

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nguyentranbao-ct/message-core/internal/config"
	"github.com/nguyentranbao-ct/message-core/internal/models"
	"github.com/nguyentranbao-ct/message-core/internal/testutil/testmongo"
	"github.com/nguyentranbao-ct/message-core/pkg/util"
)

func TestMessageRepoIntegration(t *testing.T) {
	uri := testmongo.StartMongo(t)

	ctx := context.Background()
	db, err := NewConnection(ctx, config.DatabaseConfig{
		URI:      uri,
		Database: "message_core_test",
		Timeout:  10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	migrations := NewMigrationRepository(db)
	require.NoError(t, migrations.EnsureMessageIndexes(ctx))

	repo := newMessageRepo(db, config.MessageConfig{DefaultPageSize: 40, LookupBatchSize: 7})

	create := func(t *testing.T, conv, sender, text string) *models.Message {
		t.Helper()
		msg, err := repo.Create(ctx, models.CreateMessageParams{ConversationID: conv, Text: text}, sender)
		require.NoError(t, err)
		return msg
	}
	texts := func(messages []*models.Message) []string {
		return util.ConvertList(messages, func(m *models.Message) string { return m.Text })
	}

	t.Run("create and get", func(t *testing.T) {
		msg, err := repo.Create(ctx, models.CreateMessageParams{
			ConversationID: "conv-create",
			Text:           "lunch?",
			Poll:           &models.CreatePollParams{Question: "where", Options: []string{"pho", "bun", "pho"}},
		}, "alice")
		require.NoError(t, err)
		require.NotEmpty(t, msg.ID)

		got, err := repo.GetMessage(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.SenderID)
		assert.Equal(t, msg.Created, got.Created)
		assert.Empty(t, got.Likes)
		require.NotNil(t, got.RichContent)
		require.Len(t, got.RichContent.Poll.Options, 2)

		_, err = repo.GetMessage(ctx, models.NewObjectID())
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("get messages in batches", func(t *testing.T) {
		ids := make([]models.ObjectID, 0, 20)
		for i := 0; i < 20; i++ {
			ids = append(ids, create(t, "conv-batch", "alice", fmt.Sprint(i)).ID)
		}
		ids = append(ids, ids[0], models.NewObjectID())

		found, err := repo.GetMessages(ctx, ids)
		require.NoError(t, err)
		assert.Len(t, found, 20)
	})

	t.Run("pagination", func(t *testing.T) {
		const conv = "conv-page"
		var oldest models.ObjectID
		for i := 0; i < 100; i++ {
			m := create(t, conv, "alice", fmt.Sprintf("%03d", i))
			if i == 0 {
				oldest = m.ID
			}
		}

		page, err := repo.GetConversationMessages(ctx, conv, 30, nil)
		require.NoError(t, err)
		require.Len(t, page.Messages, 30)
		assert.True(t, page.HasMore)
		assert.Equal(t, "070", page.Messages[0].Text)
		assert.Equal(t, "099", page.Messages[29].Text)

		seen := append([]string{}, texts(page.Messages)...)
		for page.HasMore {
			cursor := page.Messages[0].ID
			page, err = repo.GetConversationMessages(ctx, conv, 30, &cursor)
			require.NoError(t, err)
			seen = append(texts(page.Messages), seen...)
		}
		require.Len(t, seen, 100)
		for i, text := range seen {
			assert.Equal(t, fmt.Sprintf("%03d", i), text)
		}

		page, err = repo.GetConversationMessages(ctx, conv, 0, nil)
		require.NoError(t, err)
		assert.Len(t, page.Messages, 40)

		page, err = repo.GetConversationMessages(ctx, conv, 100, nil)
		require.NoError(t, err)
		assert.Len(t, page.Messages, 100)
		assert.False(t, page.HasMore)

		page, err = repo.GetConversationMessages(ctx, conv, math.MaxInt, nil)
		require.NoError(t, err)
		assert.Len(t, page.Messages, 100)
		assert.False(t, page.HasMore)

		page, err = repo.GetConversationMessages(ctx, conv, 10, &oldest)
		require.NoError(t, err)
		assert.NotNil(t, page.Messages)
		assert.Empty(t, page.Messages)
		assert.False(t, page.HasMore)

		page, err = repo.GetConversationMessages(ctx, "conv-empty", 10, nil)
		require.NoError(t, err)
		assert.Empty(t, page.Messages)
		assert.False(t, page.HasMore)
	})

	t.Run("state flags", func(t *testing.T) {
		msg := create(t, "conv-state", "alice", "hi")

		got, err := repo.Resolve(ctx, msg.ID)
		require.NoError(t, err)
		assert.True(t, got.Resolved)

		got, err = repo.Unresolve(ctx, msg.ID)
		require.NoError(t, err)
		assert.False(t, got.Resolved)

		got, err = repo.Delete(ctx, msg.ID)
		require.NoError(t, err)
		assert.True(t, got.Deleted)

		_, err = repo.Delete(ctx, models.NewObjectID())
		assert.ErrorIs(t, err, models.ErrUpdateFailed)
	})

	t.Run("likes are a set", func(t *testing.T) {
		msg := create(t, "conv-like", "alice", "hi")

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Like(ctx, "bob", msg.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.Like(ctx, "carol", msg.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"bob", "carol"}, got.Likes)

		got, err = repo.Unlike(ctx, "bob", msg.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"carol"}, got.Likes)

		got, err = repo.Unlike(ctx, "bob", msg.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"carol"}, got.Likes)

		_, err = repo.Like(ctx, "bob", models.NewObjectID())
		assert.ErrorIs(t, err, models.ErrUpdateFailed)
	})

	t.Run("tags", func(t *testing.T) {
		msg := create(t, "conv-tag", "alice", "invoice")

		_, err := repo.AddTag(ctx, "urgent", "mallory", msg.ID, nil)
		assert.ErrorIs(t, err, models.ErrUpdateFailed)

		id := models.NewObjectID()
		got, err := repo.AddTag(ctx, "urgent", "alice", msg.ID, &id)
		require.NoError(t, err)
		require.Len(t, got.Tags, 1)
		assert.Equal(t, id, got.Tags[0].ID)

		_, err = repo.AddTag(ctx, "again", "alice", msg.ID, &id)
		assert.ErrorIs(t, err, models.ErrUpdateFailed)

		got, err = repo.UpdateTag(ctx, "billing", "alice", msg.ID, id)
		require.NoError(t, err)
		assert.Equal(t, []models.Tag{{ID: id, Tag: "billing"}}, got.Tags)

		_, err = repo.UpdateTag(ctx, "billing", "alice", msg.ID, models.NewObjectID())
		assert.ErrorIs(t, err, models.ErrUpdateFailed)

		found, err := repo.FindMessagesByTags(ctx, []string{"billing", "nothing"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, msg.ID, found[0].ID)
	})

	t.Run("reactions", func(t *testing.T) {
		msg := create(t, "conv-react", "alice", "hi")

		_, err := repo.AddReaction(ctx, "thumbs_up", "bob", "U+1F44D", msg.ID)
		require.NoError(t, err)
		got, err := repo.AddReaction(ctx, "thumbs_up", "bob", "U+1F44D", msg.ID)
		require.NoError(t, err)
		require.Len(t, got.Reactions, 1)
		assert.Equal(t, []string{"bob"}, got.Reactions[0].UserIDs)

		var wg sync.WaitGroup
		users := []string{"u1", "u2", "u3", "u4", "u5"}
		for _, user := range users {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AddReaction(ctx, "heart", user, "U+2764", msg.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err = repo.GetMessage(ctx, msg.ID)
		require.NoError(t, err)
		require.Len(t, got.Reactions, 2)
		assert.ElementsMatch(t, users, got.Reactions[1].UserIDs)

		got, err = repo.RemoveReaction(ctx, "thumbs_up", "nobody", msg.ID)
		require.NoError(t, err)
		assert.Len(t, got.Reactions, 2)

		got, err = repo.RemoveReaction(ctx, "thumbs_up", "bob", msg.ID)
		require.NoError(t, err)
		require.Len(t, got.Reactions, 1)
		assert.Equal(t, "heart", got.Reactions[0].Reaction)

		_, err = repo.AddReaction(ctx, "thumbs_up", "bob", "", models.NewObjectID())
		assert.ErrorIs(t, err, models.ErrUpdateFailed)
		_, err = repo.RemoveReaction(ctx, "thumbs_up", "bob", models.NewObjectID())
		assert.ErrorIs(t, err, models.ErrUpdateFailed)
	})

	t.Run("votes", func(t *testing.T) {
		msg, err := repo.Create(ctx, models.CreateMessageParams{
			ConversationID: "conv-vote",
			Poll:           &models.CreatePollParams{Question: "where", Options: []string{"pho", "bun"}},
		}, "alice")
		require.NoError(t, err)

		got, err := repo.AddVote(ctx, msg.ID, "bob", "pho")
		require.NoError(t, err)
		got, err = repo.AddVote(ctx, msg.ID, "bob", "pho")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, got.RichContent.Poll.Options[0].Votes)
		assert.Empty(t, got.RichContent.Poll.Options[1].Votes)

		got, err = repo.RemoveVote(ctx, msg.ID, "bob", "pho")
		require.NoError(t, err)
		assert.Empty(t, got.RichContent.Poll.Options[0].Votes)

		_, err = repo.AddVote(ctx, msg.ID, "bob", "com")
		assert.ErrorIs(t, err, models.ErrUpdateFailed)

		plain := create(t, "conv-vote", "alice", "no poll")
		_, err = repo.AddVote(ctx, plain.ID, "bob", "pho")
		assert.ErrorIs(t, err, models.ErrUpdateFailed)
	})

	t.Run("grouped by conversation", func(t *testing.T) {
		loc := time.UTC
		grouped := newMessageRepo(db, config.MessageConfig{DefaultPageSize: 40})
		grouped.location = loc

		at := func(day int) {
			grouped.now = func() time.Time { return time.Date(2024, 5, day, 12, 0, 0, 0, loc) }
		}
		at(1)
		_, err := grouped.Create(ctx, models.CreateMessageParams{ConversationID: "g1", Text: "may 1"}, "alice")
		require.NoError(t, err)
		at(2)
		tagged, err := grouped.Create(ctx, models.CreateMessageParams{ConversationID: "g1", Text: "may 2"}, "bob")
		require.NoError(t, err)
		_, err = grouped.AddTag(ctx, "urgent", "bob", tagged.ID, nil)
		require.NoError(t, err)
		at(3)
		_, err = grouped.Create(ctx, models.CreateMessageParams{ConversationID: "g2", Text: "may 3"}, "carol")
		require.NoError(t, err)

		start := time.Date(2024, 5, 2, 0, 0, 0, 0, loc)
		end := time.Date(2024, 5, 3, 0, 0, 0, 0, loc)
		groups, err := grouped.GetMessagesGroupedByConversation(ctx, models.GroupedQuery{
			ConversationIDs: []string{"g1", "g2"},
			StartDate:       &start,
			EndDate:         &end,
		})
		require.NoError(t, err)
		require.Len(t, groups, 2)
		byConv := make(map[string][]models.GroupedMessage)
		for _, g := range groups {
			byConv[g.ConversationID] = g.Messages
		}
		assert.Equal(t, []models.GroupedMessage{{SenderID: "bob", Message: "may 2"}}, byConv["g1"])
		assert.Equal(t, []models.GroupedMessage{{SenderID: "carol", Message: "may 3"}}, byConv["g2"])

		groups, err = grouped.GetMessagesGroupedByConversation(ctx, models.GroupedQuery{
			ConversationIDs: []string{"g1", "g2"},
			Tags:            []string{"urgent"},
		})
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "g1", groups[0].ConversationID)
	})

	t.Run("normalize legacy set fields", func(t *testing.T) {
		coll := db.Database.Collection(models.Message{}.CollectionName())
		res, err := coll.InsertOne(ctx, bson.M{
			"conversation_id": "conv-legacy",
			"sender_id":       "alice",
			"text":            "old",
			"likes":           nil,
		})
		require.NoError(t, err)

		require.NoError(t, migrations.NormalizeMessageSets(ctx))
		status, err := migrations.GetMigrationStatus(ctx, "normalize_message_sets")
		require.NoError(t, err)
		assert.Equal(t, migrationCompleted, status.Status)

		var legacy bson.M
		require.NoError(t, coll.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&legacy))
		assert.Equal(t, bson.A{}, legacy["likes"])
		assert.Equal(t, bson.A{}, legacy["tags"])
		assert.Equal(t, bson.A{}, legacy["reactions"])
	})
}
