// Package sniper ties the catalog, live channel and purchase workflow
// together into the monitoring daemon.
package sniper

import (
	"context"
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/xyths/hs"
	"github.com/xyths/roplace-sniper/catalog"
	"github.com/xyths/roplace-sniper/roplace"
	"github.com/xyths/roplace-sniper/snipe"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"time"
)

const (
	collConfig        = "config"
	collSamples       = "samples"
	collAlerts        = "alerts"
	CollNotifications = "notifications"

	keyLastRefreshTime = "lastRefreshTime"

	noteExpireIndexName = "noteExpireIndex"
)

type TelegramConf struct {
	Bot   string // bot username
	Token string
}

type DiscordConf struct {
	Token         string
	AlertChannels []string `json:"alertChannels"`
}

type Config struct {
	Mongo    hs.MongoConf
	Log      hs.LogConf
	API      string // item service base url
	WS       string // live channel endpoint
	Interval string // status heartbeat
	Tracked  []int64
	Telegram TelegramConf
	Discord  DiscordConf
}

type Sniper struct {
	cfg      Config
	interval time.Duration

	Sugar *zap.SugaredLogger
	db    *mongo.Database

	client  *roplace.Client
	store   *catalog.Store
	tracker *catalog.Tracker

	tg      *tgbotapi.BotAPI
	discord *discordgo.Session
}

func New(cfg Config) *Sniper {
	return &Sniper{cfg: cfg}
}

func (s *Sniper) Init(ctx context.Context) error {
	l, err := hs.NewZapLogger(s.cfg.Log)
	if err != nil {
		return err
	}
	s.Sugar = l.Sugar()
	s.Sugar.Info("logger initialized")
	s.interval, err = time.ParseDuration(s.cfg.Interval)
	if err != nil {
		s.Sugar.Errorf("interval %s format error: %s", s.cfg.Interval, err)
		return err
	}
	db, err := hs.ConnectMongo(ctx, s.cfg.Mongo)
	if err != nil {
		s.Sugar.Errorf("connect mongo error: %s", err)
		return err
	}
	s.db = db
	if err = s.initIndex(ctx); err != nil {
		s.Sugar.Errorf("init index error: %s", err)
		return err
	}
	s.Sugar.Info("database initialized")
	s.client = roplace.NewClient(s.cfg.API, s.Sugar)
	s.store = catalog.NewStore()
	s.tracker = catalog.NewTracker()
	for _, id := range s.cfg.Tracked {
		s.tracker.Toggle(id)
	}
	if s.cfg.Telegram.Token != "" {
		s.tg, err = tgbotapi.NewBotAPI(s.cfg.Telegram.Token)
		if err != nil {
			s.Sugar.Errorf("New Telegram bot error: %s", err)
			return err
		}
		s.Sugar.Info("Telegram bot initialized")
	}
	if s.cfg.Discord.Token != "" {
		s.discord, err = discordgo.New("Bot " + s.cfg.Discord.Token)
		if err != nil {
			s.Sugar.Errorf("discord bot init error: %s", err)
			return err
		}
		s.Sugar.Info("Discord bot initialized")
	}
	s.Sugar.Info("Sniper initialized")
	return nil
}

func (s *Sniper) Close(ctx context.Context) {
	if s.discord != nil {
		if err := s.discord.Close(); err != nil {
			s.Sugar.Errorf("discord close error: %s", err)
		}
	}
	if err := s.db.Client().Disconnect(ctx); err != nil {
		s.Sugar.Errorf("db close error: %s", err)
	}
	s.Sugar.Info("Sniper closed")
}

// Watch seeds the catalog, then consumes the live channel until the
// context ends or the connection drops. Updates are applied one at a
// time, in arrival order.
func (s *Sniper) Watch(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}

	ch, err := roplace.DialChannel(ctx, s.cfg.WS, s.Sugar)
	if err != nil {
		s.Sugar.Errorf("dial live channel error: %s", err)
		return err
	}
	defer ch.Close()

	s.broadcast(ctx, newNotification(NoteSystem, "Sniper Online",
		fmt.Sprintf("Watching %d limited items", s.store.Len())), roplace.Item{})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
			status, msg := s.store.Status()
			if status == catalog.StatusError {
				s.Sugar.Warnf("catalog error: %s", msg)
			} else {
				s.Sugar.Infof("catalog %s: %d items, %d tracked", status, s.store.Len(), s.tracker.Len())
			}
		case update, ok := <-ch.Updates():
			if !ok {
				// no reconnect; surface the outage instead of going stale
				return errors.New("live channel closed")
			}
			s.process(ctx, update)
		}
	}
}

func (s *Sniper) process(ctx context.Context, update roplace.ItemUpdate) {
	prev, found := s.store.Get(update.ItemID)
	if !s.store.Merge(update) || !found {
		s.Sugar.Debugf("drop update for unknown item %d", update.ItemID)
		return
	}
	if update.Price != nil && *update.Price != prev.Price {
		if err := s.saveSample(ctx, update.ItemID, *update.Price); err != nil {
			s.Sugar.Errorf("save price sample error: %s", err)
		}
	}
	note := noteFromUpdate(prev, update, s.tracker.Tracked(update.ItemID))
	if note == nil {
		return
	}
	item, _ := s.store.Get(update.ItemID)
	if err := s.saveNotification(ctx, *note); err != nil {
		s.Sugar.Errorf("save notification error: %s", err)
	}
	s.broadcast(ctx, *note, item)
}

// refresh replaces the whole working set from one catalog fetch.
func (s *Sniper) refresh(ctx context.Context) error {
	items, err := s.client.ListItems(ctx)
	if err != nil {
		s.store.Fail(err.Error())
		s.Sugar.Errorf("load catalog error: %s", err)
		return err
	}
	s.store.Load(items)
	s.Sugar.Infof("catalog loaded: %d items", len(items))

	if last, err := s.loadLastRefresh(ctx); err == nil && last != nil {
		s.Sugar.Infof("previous refresh: %s", last.String())
	}
	if err = s.saveLastRefresh(ctx, time.Now()); err != nil {
		s.Sugar.Errorf("save refresh time error: %s", err)
	}
	return nil
}

// Snipe is the one-shot purchase entry used by the CLI. With alertOnly it
// only registers the price alert.
func (s *Sniper) Snipe(ctx context.Context, id, maxPrice, alertPrice int64, alertOnly bool) error {
	item, err := s.client.GetItemDetail(ctx, id)
	if err != nil {
		s.Sugar.Errorf("get item %d error: %s", id, err)
		return err
	}
	settings := snipe.DefaultSettings(*item)
	if maxPrice > 0 {
		settings.MaxPrice = maxPrice
	}
	if alertPrice > 0 {
		settings.AlertPrice = alertPrice
	}
	if snipe.Overpaying(*item, settings) {
		s.Sugar.Warnf("max price R$ %d is well above the average price R$ %d, consider lowering it",
			settings.MaxPrice, item.AveragePrice)
	}

	runner := snipe.NewRunner(s.client, s.store, s.Sugar)
	if alertOnly {
		alert, err := runner.SetAlertOnly(ctx, *item, settings)
		if err != nil {
			return err
		}
		if err = s.saveAlert(ctx, *alert); err != nil {
			s.Sugar.Errorf("save alert error: %s", err)
		}
		return nil
	}

	ok, err := runner.Start(ctx, *item, settings)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("snipe failed for item %d (%s)", item.ID, item.Name)
	}
	return nil
}

// List fetches a fresh catalog and applies the filter.
func (s *Sniper) List(ctx context.Context, f catalog.Filter, top int) ([]roplace.Item, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	items := catalog.Search(s.store.Snapshot(), f)
	if top > 0 && top < len(items) {
		items = items[:top]
	}
	return items, nil
}

// Show fetches one item's full record.
func (s *Sniper) Show(ctx context.Context, id int64) (*roplace.Item, error) {
	return s.client.GetItemDetail(ctx, id)
}

func (s *Sniper) loadLastRefresh(ctx context.Context) (*time.Time, error) {
	coll := s.db.Collection(collConfig)
	last := struct {
		Key          string    `bson:"key"`
		Value        time.Time `bson:"value"`
		LastModified time.Time `bson:"lastModified"`
	}{}
	if err := coll.FindOne(ctx, bson.D{{Key: "key", Value: keyLastRefreshTime}}).Decode(&last); err == nil {
		return &last.Value, nil
	} else if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	} else {
		return nil, err
	}
}

func (s *Sniper) saveLastRefresh(ctx context.Context, now time.Time) error {
	coll := s.db.Collection(collConfig)

	if _, err := coll.UpdateOne(
		ctx,
		bson.D{
			{Key: "key", Value: keyLastRefreshTime},
		},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "value", Value: now},
			}},
			{Key: "$currentDate", Value: bson.D{
				{Key: "lastModified", Value: true},
			}},
		},
		options.Update().SetUpsert(true),
	); err != nil {
		return err
	}
	return nil
}

func (s *Sniper) saveSample(ctx context.Context, itemId, price int64) error {
	coll := s.db.Collection(collSamples)
	_, err := coll.InsertOne(ctx, bson.D{
		{Key: "itemId", Value: itemId},
		{Key: "price", Value: price},
		{Key: "createdAt", Value: time.Now()},
	})
	return err
}

func (s *Sniper) saveAlert(ctx context.Context, alert roplace.Alert) error {
	coll := s.db.Collection(collAlerts)
	opt := options.FindOneAndReplace().SetUpsert(true)
	if err := coll.FindOneAndReplace(ctx,
		bson.D{{Key: "id", Value: alert.ID}},
		alert,
		opt,
	).Err(); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	return nil
}

func (s *Sniper) saveNotification(ctx context.Context, note Notification) error {
	coll := s.db.Collection(CollNotifications)
	_, err := coll.InsertOne(ctx, note)
	return err
}

func (s *Sniper) initIndex(ctx context.Context) error {
	// list index first
	coll := s.db.Collection(CollNotifications)
	indexView := coll.Indexes()
	cursor, err := indexView.List(ctx, options.ListIndexes().SetMaxTime(time.Second*2))
	if err != nil {
		return err
	}
	var indexes []bson.M
	if err = cursor.All(ctx, &indexes); err != nil {
		return err
	}
	for _, index := range indexes {
		if index["name"] == noteExpireIndexName {
			return nil
		}
	}
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(60 * 60 * 24 * 7).SetName(noteExpireIndexName), // 7 days
	}
	name, err := indexView.CreateOne(ctx, index)
	if err != nil {
		return err
	}
	s.Sugar.Infof("create index %s", name)
	return nil
}

func (s *Sniper) getAvailableChats(ctx context.Context) ([]Configuration, error) {
	coll := s.db.Collection(CollPreferences)
	var chats []Configuration
	cur, err := coll.Find(ctx,
		bson.D{
			{Key: "bot", Value: s.cfg.Telegram.Bot},
		},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if err = cur.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// broadcast sends one notification to every subscribed Telegram chat and
// every configured Discord channel.
func (s *Sniper) broadcast(ctx context.Context, note Notification, item roplace.Item) {
	if s.tg != nil {
		chats, err := s.getAvailableChats(ctx)
		if err != nil {
			s.Sugar.Errorf("get available chats error: %s", err)
		}
		for _, chat := range chats {
			if item.ID != 0 && !chat.wants(item.ID) {
				continue
			}
			if chat.Options[OptionQuiet] && note.Type == NoteSystem {
				continue
			}
			msg := tgbotapi.NewMessage(chat.ChatId, format(note, item, chat.Options))
			if _, err := s.tg.Send(msg); err != nil {
				s.Sugar.Errorf("send message error: %s", err)
			}
		}
	}
	if s.discord != nil {
		content := format(note, item, Options{OptionLink: true})
		for _, channel := range s.cfg.Discord.AlertChannels {
			if _, err := s.discord.ChannelMessageSend(channel, content); err != nil {
				s.Sugar.Errorf("discord send error: %s", err)
			}
		}
	}
}
