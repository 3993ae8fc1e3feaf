package loads

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/BearBump/DriverComm/internal/broker/messages"
	cachemocks "github.com/BearBump/DriverComm/internal/cache/mocks"
	"github.com/BearBump/DriverComm/internal/integrations/sms/fake"
	"github.com/BearBump/DriverComm/internal/models"
	"github.com/BearBump/DriverComm/internal/services/notify"

	loadsmocks "github.com/BearBump/DriverComm/internal/services/loads/mocks"
)

type ServiceSuite struct {
	suite.Suite

	repo     *loadsmocks.MockRepository
	producer *loadsmocks.MockProducer
	cache    *cachemocks.MockBytesCache
	sms      *fake.Client
	svc      *Service
}

func (s *ServiceSuite) SetupTest() {
	s.repo = &loadsmocks.MockRepository{}
	s.producer = &loadsmocks.MockProducer{}
	s.cache = &cachemocks.MockBytesCache{}
	s.sms = fake.New()
	d := notify.New(s.sms, nil, "http://localhost:8080", time.Second)
	s.svc = New(s.repo, d, s.cache, 10*time.Minute).WithEvents(s.producer, "load.events")
}

func strp(v string) *string { return &v }

func (s *ServiceSuite) TestGet_CacheHit_NoDB() {
	b, _ := json.Marshal(&models.Load{ID: "LD-7", Status: "Arrived"})
	s.cache.On("Get", mock.Anything, "load:LD-7:current").Return(b, true, nil).Once()

	l, err := s.svc.Get(context.Background(), "LD-7")
	s.Require().NoError(err)
	s.Require().Equal("Arrived", l.Status)
	s.repo.AssertNotCalled(s.T(), "GetLoad", mock.Anything, mock.Anything)
	s.cache.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestGet_CacheErrorAndBadJSON_FallBackToDB() {
	s.cache.On("Get", mock.Anything, "load:LD-1:current").Return([]byte(nil), false, errors.New("redis down")).Once()
	s.repo.On("GetLoad", mock.Anything, "LD-1").Return(&models.Load{ID: "LD-1"}, nil).Twice()
	s.cache.On("Version", mock.Anything, "load:LD-1:current").Return(int64(3), nil).Twice()
	s.cache.On("SetIfVersion", mock.Anything, "load:LD-1:current", int64(3), mock.Anything, 10*time.Minute).
		Return(false, errors.New("set failed")).Twice()

	_, err := s.svc.Get(context.Background(), "LD-1")
	s.Require().NoError(err)

	s.cache.On("Get", mock.Anything, "load:LD-1:current").Return([]byte("not-json"), true, nil).Once()
	_, err = s.svc.Get(context.Background(), "LD-1")
	s.Require().NoError(err)

	s.repo.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestGet_NotFound() {
	s.cache.On("Get", mock.Anything, "load:LD-0:current").Return([]byte(nil), false, nil).Once()
	s.cache.On("Version", mock.Anything, "load:LD-0:current").Return(int64(0), nil).Once()
	s.repo.On("GetLoad", mock.Anything, "LD-0").Return(nil, models.ErrNotFound).Once()

	_, err := s.svc.Get(context.Background(), "LD-0")
	s.Require().ErrorIs(err, models.ErrNotFound)
	s.cache.AssertNotCalled(s.T(), "SetIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestGet_VersionError_NoFill() {
	s.cache.On("Get", mock.Anything, "load:LD-1:current").Return([]byte(nil), false, nil).Once()
	s.cache.On("Version", mock.Anything, "load:LD-1:current").Return(int64(0), errors.New("redis down")).Once()
	s.repo.On("GetLoad", mock.Anything, "LD-1").Return(&models.Load{ID: "LD-1"}, nil).Once()

	l, err := s.svc.Get(context.Background(), "LD-1")
	s.Require().NoError(err)
	s.Require().Equal("LD-1", l.ID)
	s.cache.AssertNotCalled(s.T(), "SetIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestGet_CacheDisabledWhenTTLZero() {
	svc := New(s.repo, notify.New(s.sms, nil, "", time.Second), s.cache, 0)
	s.repo.On("GetLoad", mock.Anything, "LD-1").Return(&models.Load{ID: "LD-1"}, nil).Once()

	_, err := svc.Get(context.Background(), "LD-1")
	s.Require().NoError(err)
	s.cache.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
	s.cache.AssertNotCalled(s.T(), "SetIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestCreate_NotifiesDriverAndPublishes() {
	stored := &models.Load{ID: "LD-12345", Origin: "A", Destination: "B", DriverPhone: "+15551112222", Status: "Planned"}
	s.repo.On("UpsertLoad", mock.Anything, mock.MatchedBy(func(l *models.Load) bool {
		return l.ID == "" && l.DriverPhone == "+15551112222" && l.Status == "Planned" && l.Lane == "A → B"
	})).Return(stored, nil).Once()
	s.cache.On("Invalidate", mock.Anything, "load:LD-12345:current").Return(nil).Once()
	s.producer.On("Publish", mock.Anything, "load.events", []byte("LD-12345"), mock.MatchedBy(func(b []byte) bool {
		var e messages.LoadEvent
		return json.Unmarshal(b, &e) == nil && e.Kind == messages.LoadEventCreated && e.LoadID == "LD-12345"
	})).Return(nil).Once()

	l, err := s.svc.Create(context.Background(), models.LoadInput{ID: "  ", Origin: "A", Destination: "B", DriverPhone: "555-111-2222"})
	s.Require().NoError(err)
	s.Require().Equal("LD-12345", l.ID)

	sent := s.sms.Sent()
	s.Require().Len(sent, 1)
	s.Require().Equal("+15551112222", sent[0].To)
	s.repo.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
	s.producer.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestCreate_PublishFailureIgnored() {
	stored := &models.Load{ID: "LD-1"}
	s.repo.On("UpsertLoad", mock.Anything, mock.Anything).Return(stored, nil).Once()
	s.cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Once()
	s.producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()

	l, err := s.svc.Create(context.Background(), models.LoadInput{})
	s.Require().NoError(err)
	s.Require().Equal("LD-1", l.ID)
	s.Require().Empty(s.sms.Sent())
}

func (s *ServiceSuite) TestCreate_RepoError() {
	s.repo.On("UpsertLoad", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := s.svc.Create(context.Background(), models.LoadInput{DriverPhone: "5551112222"})
	s.Require().Error(err)
	s.Require().Empty(s.sms.Sent())
	s.producer.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestPatch_StatusChange_FansOut() {
	before := &models.Load{ID: "LD-1", Status: "Planned", AgentPhone: "+1A", ShipperPhone: "+1S", ReceiverPhone: "+1R"}
	after := *before
	after.Status = "En-route to unload"

	p := models.LoadPatch{Status: strp("En-route to unload")}
	s.repo.On("GetLoad", mock.Anything, "LD-1").Return(before, nil).Once()
	s.repo.On("PatchLoad", mock.Anything, "LD-1", p).Return(&after, nil).Once()
	s.cache.On("Invalidate", mock.Anything, "load:LD-1:current").Return(nil).Once()
	s.producer.On("Publish", mock.Anything, "load.events", []byte("LD-1"), mock.Anything).Return(nil).Once()

	out, err := s.svc.Patch(context.Background(), "LD-1", p)
	s.Require().NoError(err)
	s.Require().Equal("En-route to unload", out.Status)

	var to []string
	for _, m := range s.sms.Sent() {
		to = append(to, m.To)
	}
	s.Require().Equal([]string{"+1A", "+1R"}, to)
	s.producer.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestPatch_SameStatus_NoFanout() {
	before := &models.Load{ID: "LD-1", Status: "Arrived", ETA: "17:00", AgentPhone: "+1A"}
	p := models.LoadPatch{Status: strp("Arrived"), ETA: strp(""), Driver: strp("Bob")}
	s.repo.On("GetLoad", mock.Anything, "LD-1").Return(before, nil).Once()
	s.repo.On("PatchLoad", mock.Anything, "LD-1", p).Return(before, nil).Once()
	s.cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := s.svc.Patch(context.Background(), "LD-1", p)
	s.Require().NoError(err)
	s.Require().Empty(s.sms.Sent())
	s.producer.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestPatch_ETAChange_FansOut() {
	before := &models.Load{ID: "LD-1", Status: "Arrived", ETA: "17:00", MerchantPhone: "+1M"}
	after := *before
	after.ETA = "18:00"
	p := models.LoadPatch{ETA: strp("18:00")}
	s.repo.On("GetLoad", mock.Anything, "LD-1").Return(before, nil).Once()
	s.repo.On("PatchLoad", mock.Anything, "LD-1", p).Return(&after, nil).Once()
	s.cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Once()
	s.producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	_, err := s.svc.Patch(context.Background(), "LD-1", p)
	s.Require().NoError(err)
	sent := s.sms.Sent()
	s.Require().Len(sent, 1)
	s.Require().Equal("Load LD-1: Arrived. ETA 18:00  → ", sent[0].Body)
}

func (s *ServiceSuite) TestPatch_NotFound() {
	s.repo.On("GetLoad", mock.Anything, "LD-0").Return(nil, models.ErrNotFound).Once()

	_, err := s.svc.Patch(context.Background(), "LD-0", models.LoadPatch{Status: strp("Arrived")})
	s.Require().ErrorIs(err, models.ErrNotFound)
	s.repo.AssertNotCalled(s.T(), "PatchLoad", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestDelete() {
	s.repo.On("DeleteLoad", mock.Anything, "LD-1").Return(true, nil).Once()
	s.repo.On("DeleteLoad", mock.Anything, "LD-2").Return(false, nil).Once()
	s.cache.On("Invalidate", mock.Anything, "load:LD-1:current").Return(nil).Once()
	s.cache.On("Invalidate", mock.Anything, "load:LD-2:current").Return(errors.New("redis down")).Once()

	s.Require().NoError(s.svc.Delete(context.Background(), "LD-1"))
	s.Require().ErrorIs(s.svc.Delete(context.Background(), "LD-2"), models.ErrNotFound)
	s.cache.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestSendMessage_Validation() {
	for _, m := range []models.DirectMessage{
		{To: "driver", Body: "x"},
		{LoadID: "LD-1", Body: "x"},
		{LoadID: "LD-1", To: "driver"},
	} {
		_, err := s.svc.SendMessage(context.Background(), m)
		s.Require().True(models.IsValidation(err))
		s.Require().Equal("loadId, to, body required", err.Error())
	}
	s.repo.AssertNotCalled(s.T(), "GetLoad", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestSendMessage_LoadMissing() {
	s.repo.On("GetLoad", mock.Anything, "LD-9").Return(nil, models.ErrNotFound).Once()

	_, err := s.svc.SendMessage(context.Background(), models.DirectMessage{LoadID: "LD-9", To: "driver", Body: "x"})
	s.Require().ErrorIs(err, models.ErrNotFound)
	s.Require().Empty(s.sms.Sent())
}

func (s *ServiceSuite) TestListMessages_RequiresLoadID() {
	_, err := s.svc.ListMessages(context.Background(), " ")
	s.Require().True(models.IsValidation(err))

	s.repo.On("ListMessages", mock.Anything, "LD-1").Return([]*models.Message{{ID: 1}}, nil).Once()
	items, err := s.svc.ListMessages(context.Background(), "LD-1")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
