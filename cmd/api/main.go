// Package main (in api-subfolder) provides launch of the admin/hook API and the orphan-recovery loop
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/ProductWatermark/internal/kafka"
	"github.com/UnendingLoop/ProductWatermark/internal/mwlogger"
	"github.com/UnendingLoop/ProductWatermark/internal/repository"
	"github.com/UnendingLoop/ProductWatermark/internal/service"
	"github.com/UnendingLoop/ProductWatermark/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}
	setDefaults(appConfig)

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(appConfig.GetString("LOG_LEVEL")); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// накатываем миграцию
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresWatermarkRepo(dbConn)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	if err := kafka.WaitKafkaReady(ctx, broker, 5*time.Second); err != nil {
		log.Fatalf("Kafka is unreachable: %v", err)
	}
	// подключиться к кафке как продюсер
	topic := appConfig.GetString("KAFKA_TOPIC")
	spec := kafka.TopicSpec{Name: topic, Partitions: appConfig.GetInt("KAFKA_PARTITIONS")}
	if err := kafka.InitKafkaTopics(ctx, broker, 10*time.Second, spec); err != nil {
		log.Fatalf("Failed to init Kafka topic %q: %v", topic, err)
	}
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	// создаем экземпляр сервиса
	var svc WatermarkAPIService = service.NewWatermarkService(repo, pub, service.Options{
		WatermarkDir:  appConfig.GetString("WATERMARK_DIR"),
		HtaccessPath:  appConfig.GetString("HTACCESS_PATH"),
		AdminDir:      appConfig.GetString("ADMIN_DIR"),
		RegenerateRPS: appConfig.GetFloat64("REGENERATE_RPS"),
	})

	// дефолтные настройки и секция .htaccess при первом старте
	if err := svc.EnsureDefaults(ctx); err != nil {
		log.Fatalf("Failed to write default settings: %v", err)
	}
	if err := svc.UpdateAccessRules(ctx); err != nil {
		log.Printf("Failed to update access rules: %v", err)
	}

	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewWatermarkHandler(svc)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)

	engine.GET("/settings", handlers.GetSettings)
	engine.PUT("/settings", handlers.SaveSettings)
	engine.POST("/settings/watermark", handlers.UploadWatermark)          // загрузка ватермарка
	engine.GET("/settings/watermark/preview", handlers.WatermarkPreview) // превью ватермарка
	engine.GET("/image-types", handlers.ListImageTypes)

	engine.POST("/hooks/watermark", handlers.Hook) // новая товарная картинка
	engine.POST("/regenerate", handlers.Regenerate)

	engine.GET("/jobs", handlers.GetAllJobs) // список заданий с пагинацией и сортировкой
	engine.GET("/jobs/:id", handlers.GetJob)
	engine.DELETE("/jobs/:id", handlers.DeleteJob)

	engine.PUT("/htaccess", handlers.UpdateAccessRules)
	engine.DELETE("/htaccess", handlers.RemoveAccessRules)

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// запускаем фонового воркера для отслеживания подвисших задач
	go recoveryLoop(ctx, svc)

	// ждем отмены контекста для запуска грейсфул закрытия соединений бд и кафки
	<-ctx.Done()

	shutdown(srv, pub, dbConn)
	log.Println("Exiting API...")
}

func recoveryLoop(ctx context.Context, svc WatermarkAPIService) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Recovery loop crashed:", r)
		}
	}()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.ReviveOrphans(ctx, 20)
		}
	}
}

func shutdown(srv *http.Server, pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Println("Failed to shutdown HTTP-server:", err)
	}

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-writer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
