package genlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weiawesome/genguid/internal/packet"
	"github.com/weiawesome/genguid/pkg/database"
	"github.com/weiawesome/genguid/pkg/log"
)

// PacketModel is the GORM model for the packets table.
type PacketModel struct {
	Sequence    int64  `gorm:"column:sequence;primaryKey;autoIncrement:false"`
	Value       string `gorm:"column:value;type:varchar(36);not null"`
	TimestampMs int64  `gorm:"column:timestamp_ms;not null"`
}

// TableName specifies the table name for PacketModel.
func (PacketModel) TableName() string {
	return "packets"
}

func packetToModel(p packet.Packet) *PacketModel {
	return &PacketModel{
		Sequence:    p.SequenceNumber,
		Value:       p.Value.String(),
		TimestampMs: p.Timestamp.UnixMilli(),
	}
}

// ToPacket converts the row back to a packet.
func (m *PacketModel) ToPacket() (packet.Packet, error) {
	id, err := uuid.Parse(m.Value)
	if err != nil {
		return packet.Null, fmt.Errorf("row %d: identifier: %w", m.Sequence, err)
	}
	p, err := packet.New(m.Sequence, id, time.UnixMilli(m.TimestampMs))
	if err != nil {
		return packet.Null, fmt.Errorf("row %d: %w", m.Sequence, err)
	}
	return p, nil
}

// SQLiteLog stores packets in a SQLite database through GORM.
type SQLiteLog struct {
	db   *gorm.DB
	path string
}

// NewSQLiteLog opens (or creates) the database at path and migrates the
// packets table.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     path,
		MaxOpenConns: 1,
	})
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, &PacketModel{}); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate packets table: %w", err)
	}
	return &SQLiteLog{db: db, path: path}, nil
}

// Path returns the database file.
func (l *SQLiteLog) Path() string { return l.path }

func (l *SQLiteLog) Append(ctx context.Context, p packet.Packet) error {
	if p.IsNull() {
		return fmt.Errorf("append: null packet")
	}
	logger := log.Component(ctx, "genlog")

	result := l.db.WithContext(ctx).Create(packetToModel(p))
	if result.Error != nil {
		logger.Error().Err(result.Error).Int64(log.FieldSequence, p.SequenceNumber).Msg("failed to insert packet")
		return fmt.Errorf("append: sequence number %d: %w", p.SequenceNumber, result.Error)
	}
	logger.Debug().Int64(log.FieldSequence, p.SequenceNumber).Msg("packet stored in db")
	return nil
}

func (l *SQLiteLog) Fetch(ctx context.Context, seq int64) (packet.Packet, error) {
	if seq < 1 {
		return packet.Null, nil
	}
	var model PacketModel
	result := l.db.WithContext(ctx).First(&model, "sequence = ?", seq)
	return l.toPacket(&model, result.Error)
}

func (l *SQLiteLog) Latest(ctx context.Context) (packet.Packet, error) {
	var model PacketModel
	result := l.db.WithContext(ctx).Order("sequence DESC").Limit(1).Take(&model)
	return l.toPacket(&model, result.Error)
}

func (l *SQLiteLog) toPacket(model *PacketModel, err error) (packet.Packet, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return packet.Null, nil
		}
		return packet.Null, fmt.Errorf("query %s: %w", l.path, err)
	}
	p, err := model.ToPacket()
	if err != nil {
		return packet.Null, corrupt(l.path, err)
	}
	return p, nil
}

func (l *SQLiteLog) NotifyOfGeneratedGuid(ctx context.Context, p packet.Packet) error {
	return l.Append(ctx, p)
}

// Close releases the connection pool.
func (l *SQLiteLog) Close() error {
	return database.Close(l.db)
}
