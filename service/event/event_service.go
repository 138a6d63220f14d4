/*
 * @module service/event/event_service
 * @description 事件管理服务，提供SSE质量告警推送和实体变更的数据库监听
 * @architecture 事件驱动架构 - 业务服务层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 数据库NOTIFY -> 事件处理器 -> SSE推送到订阅客户端
 * @rules 确保事件的实时性和可靠性；客户端事件队列满时丢弃而非阻塞
 * @dependencies biocuration-service/service/models, gorm.io/gorm, github.com/lib/pq
 * @refs service/models/event.go, api/controllers/event_controller.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"biocuration-service/service/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// notifyChannel 实体变更通知使用的PostgreSQL通道
const notifyChannel = "biocuration_changes"

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// EventService 事件管理服务
type EventService struct {
	db                *gorm.DB
	connections       map[string]map[string]*SSEClient // userName -> connectionID -> client
	mu                sync.RWMutex
	dbEventProcessors map[string]models.DBEventProcessor
	dbListener        *pq.Listener
	ctx               context.Context
	cancel            context.CancelFunc
	functionCreated   bool // 通知函数是否已创建
}

// SSEClient SSE客户端连接
type SSEClient struct {
	ID       string
	UserName string
	Channel  chan *models.SSEEvent
	Done     chan bool
	ClientIP string
}

// NewEventService 创建事件服务实例
func NewEventService(db *gorm.DB) *EventService {
	ctx, cancel := context.WithCancel(context.Background())

	service := &EventService{
		db:                db,
		connections:       make(map[string]map[string]*SSEClient),
		dbEventProcessors: make(map[string]models.DBEventProcessor),
		ctx:               ctx,
		cancel:            cancel,
	}

	go service.startDBListener()
	go service.startConnectionJanitor()

	return service
}

// === SSE连接管理 ===

// AddSSEConnection 添加SSE连接
func (s *EventService) AddSSEConnection(userName, connectionID, clientIP string) *SSEClient {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connections[userName] == nil {
		s.connections[userName] = make(map[string]*SSEClient)
	}

	client := &SSEClient{
		ID:       connectionID,
		UserName: userName,
		Channel:  make(chan *models.SSEEvent, 100), // 缓冲100个事件
		Done:     make(chan bool),
		ClientIP: clientIP,
	}

	s.connections[userName][connectionID] = client

	// 记录连接到数据库
	connection := &models.SSEConnection{
		UserName:     userName,
		ConnectionID: connectionID,
		ClientIP:     clientIP,
		ConnectedAt:  time.Now(),
		LastPingAt:   time.Now(),
		IsActive:     true,
	}
	s.db.Create(connection)

	slog.Info("SSE连接已建立", "user", userName, "connection_id", connectionID, "ip", clientIP)
	return client
}

// RemoveSSEConnection 移除SSE连接
func (s *EventService) RemoveSSEConnection(userName, connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userConnections, exists := s.connections[userName]; exists {
		if client, exists := userConnections[connectionID]; exists {
			close(client.Done)
			delete(userConnections, connectionID)

			if len(userConnections) == 0 {
				delete(s.connections, userName)
			}

			s.db.Model(&models.SSEConnection{}).
				Where("connection_id = ?", connectionID).
				Update("is_active", false)

			slog.Info("SSE连接已断开", "user", userName, "connection_id", connectionID)
		}
	}
}

// SendEventToUser 向指定用户发送事件
func (s *EventService) SendEventToUser(userName string, event *models.SSEEvent) error {
	s.mu.RLock()
	userConnections, exists := s.connections[userName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("用户 %s 没有活跃的SSE连接", userName)
	}

	// 保存事件到数据库
	if err := s.db.Create(event).Error; err != nil {
		slog.Error("保存SSE事件失败", "error", err)
		return err
	}

	for _, client := range userConnections {
		select {
		case client.Channel <- event:
		default:
			slog.Warn("SSE事件队列已满，跳过发送", "user", userName, "connection_id", client.ID)
		}
	}

	return nil
}

// BroadcastEvent 广播事件给所有用户
func (s *EventService) BroadcastEvent(event *models.SSEEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.db.Create(event).Error; err != nil {
		slog.Error("保存广播事件失败", "error", err)
		return err
	}

	for userName, userConnections := range s.connections {
		for _, client := range userConnections {
			eventCopy := *event
			eventCopy.UserName = userName

			select {
			case client.Channel <- &eventCopy:
			default:
				slog.Warn("SSE事件队列已满，跳过广播", "user", userName, "connection_id", client.ID)
			}
		}
	}

	return nil
}

// BroadcastQualityAlert 广播质量告警事件
func (s *EventService) BroadcastQualityAlert(pipelineName, stageName string, qualityScore float64, data map[string]interface{}) {
	payload := map[string]interface{}{
		"pipeline":      pipelineName,
		"stage":         stageName,
		"quality_score": qualityScore,
	}
	for k, v := range data {
		payload[k] = v
	}

	event := &models.SSEEvent{
		EventType: "quality_alert",
		UserName:  "system",
		Data:      payload,
	}
	if err := s.BroadcastEvent(event); err != nil {
		slog.Warn("质量告警广播失败", "pipeline", pipelineName, "stage", stageName, "error", err)
	}
}

// === 数据库监听管理 ===

// RegisterDBEventProcessor 注册数据库事件处理器，按需为其表创建NOTIFY触发器
func (s *EventService) RegisterDBEventProcessor(processor models.DBEventProcessor) error {
	s.mu.Lock()
	s.dbEventProcessors[processor.TableName()] = processor
	s.mu.Unlock()

	slog.Info("数据库事件处理器已注册", "table", processor.TableName())
	if err := s.ensureTableTrigger(processor.TableName()); err != nil {
		slog.Error("创建表触发器失败", "table", processor.TableName(), "error", err)
		return err
	}
	return nil
}

// startDBListener 启动数据库监听器
func (s *EventService) startDBListener() {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	s.dbListener = pq.NewListener(connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("PostgreSQL监听器事件", "event", ev, "error", err)
		}
	})

	if err := s.dbListener.Listen(notifyChannel); err != nil {
		slog.Error("监听数据库通知失败", "channel", notifyChannel, "error", err)
		return
	}

	slog.Info("数据库监听器已启动", "channel", notifyChannel)

	for {
		select {
		case notification := <-s.dbListener.Notify:
			if notification != nil {
				s.handleDBNotification(notification)
			}
		case <-s.ctx.Done():
			slog.Info("数据库监听器已停止")
			return
		}
	}
}

// handleDBNotification 处理数据库通知
func (s *EventService) handleDBNotification(notification *pq.Notification) {
	var changeData map[string]interface{}
	if err := json.Unmarshal([]byte(notification.Extra), &changeData); err != nil {
		slog.Error("解析数据库通知失败", "error", err)
		return
	}

	tableName, _ := changeData["table"].(string)
	eventType, _ := changeData["type"].(string)
	recordID, _ := changeData["record_id"].(string)

	slog.Debug("收到数据库变更通知", "table", tableName, "type", eventType, "record_id", recordID)

	s.mu.RLock()
	processor, ok := s.dbEventProcessors[tableName]
	s.mu.RUnlock()
	if !ok {
		return
	}

	if err := processor.ProcessDBChangeEvent(changeData); err != nil {
		slog.Error("处理数据库变更事件失败", "table", tableName, "error", err)
	}
}

// startConnectionJanitor 定期清理已断开的SSE连接
func (s *EventService) startConnectionJanitor() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupInactiveConnections()
		case <-s.ctx.Done():
			return
		}
	}
}

// cleanupInactiveConnections 清理不活跃的连接
func (s *EventService) cleanupInactiveConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userName, userConnections := range s.connections {
		for connectionID, client := range userConnections {
			select {
			case <-client.Done:
				delete(userConnections, connectionID)
				slog.Debug("清理已断开的连接", "user", userName, "connection_id", connectionID)
			default:
			}
		}

		if len(userConnections) == 0 {
			delete(s.connections, userName)
		}
	}
}

// Stop 停止事件服务
func (s *EventService) Stop() {
	s.cancel()

	if s.dbListener != nil {
		s.dbListener.Close()
	}

	s.mu.Lock()
	for _, userConnections := range s.connections {
		for _, client := range userConnections {
			close(client.Done)
		}
	}
	s.connections = make(map[string]map[string]*SSEClient)
	s.mu.Unlock()

	slog.Info("事件服务已停止")
}

// ensureTableTrigger 为指定表创建变更通知触发器
func (s *EventService) ensureTableTrigger(tableName string) error {
	if err := s.createNotifyFunction(); err != nil {
		return fmt.Errorf("创建通知函数失败: %w", err)
	}

	triggerName := tableName + "_notify"
	createTriggerSQL := fmt.Sprintf(`
		CREATE OR REPLACE TRIGGER %s
		AFTER INSERT OR UPDATE OR DELETE ON %s
		FOR EACH ROW
		EXECUTE FUNCTION notify_biocuration_changes();
	`, triggerName, tableName)

	if err := s.db.Exec(createTriggerSQL).Error; err != nil {
		return fmt.Errorf("执行创建触发器SQL失败: %w", err)
	}

	slog.Info("表变更触发器已就绪", "table", tableName, "trigger", triggerName)
	return nil
}

// createNotifyFunction 创建数据库通知函数
func (s *EventService) createNotifyFunction() error {
	if s.functionCreated {
		return nil
	}

	createFunctionSQL := `
CREATE OR REPLACE FUNCTION notify_biocuration_changes()
RETURNS TRIGGER AS $$
DECLARE
    record_id TEXT;
    payload JSON;
BEGIN
    IF TG_OP = 'DELETE' THEN
        record_id := OLD.id;
        payload := json_build_object(
            'table', TG_TABLE_NAME,
            'type', TG_OP,
            'record_id', record_id,
            'old_data', row_to_json(OLD),
            'timestamp', extract(epoch from now())
        );
    ELSE
        record_id := NEW.id;
        payload := json_build_object(
            'table', TG_TABLE_NAME,
            'type', TG_OP,
            'record_id', record_id,
            'new_data', row_to_json(NEW),
            'timestamp', extract(epoch from now())
        );
    END IF;

    PERFORM pg_notify('biocuration_changes', payload::text);

    IF TG_OP = 'DELETE' THEN
        RETURN OLD;
    ELSE
        RETURN NEW;
    END IF;
END;
$$ LANGUAGE plpgsql;`

	if err := s.db.Exec(createFunctionSQL).Error; err != nil {
		return fmt.Errorf("执行创建函数SQL失败: %w", err)
	}

	slog.Info("数据库通知函数 notify_biocuration_changes() 已创建")
	s.functionCreated = true
	return nil
}

// GetSSEConnectionList 获取SSE连接列表
func (s *EventService) GetSSEConnectionList(page, pageSize int, userName string, isActive *bool) ([]models.SSEConnection, int64, error) {
	var connections []models.SSEConnection
	var total int64

	query := s.db.Model(&models.SSEConnection{})
	if userName != "" {
		query = query.Where("user_name = ?", userName)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("connected_at DESC").
		Offset(offset).Limit(pageSize).Find(&connections).Error

	return connections, total, err
}

// GetEventHistoryList 获取事件历史列表
func (s *EventService) GetEventHistoryList(page, pageSize int, userName, eventType string) ([]models.SSEEvent, int64, error) {
	var events []models.SSEEvent
	var total int64

	query := s.db.Model(&models.SSEEvent{})
	if userName != "" {
		query = query.Where("user_name = ?", userName)
	}
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&events).Error

	return events, total, err
}
