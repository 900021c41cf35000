package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	// 带详情的错误
	err = New(ErrRoomNotFound, "房间abc不存在")
	suite.NotNil(err)
	suite.Equal(ErrRoomNotFound, err.Code)
	suite.Equal("房间不存在", err.Message)
	suite.Equal("房间abc不存在", err.Details)

	// 多个详情
	err = New(ErrDatabaseConnect, "连接失败", "主机: localhost")
	suite.Equal("连接失败; 主机: localhost", err.Details)

	// 未知错误码回退到未知错误消息
	err = New(ErrorCode(9999))
	suite.Equal("未知错误", err.Message)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInvalidParam, "棋盘行数 %d 非法", 19)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("棋盘行数 19 非法", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	// 包装nil错误
	suite.Nil(Wrap(nil, ErrUnknown))

	// 包装已有的AppError保留原始错误码
	appErr := New(ErrRoomFull, "2/2")
	wrappedAppErr := Wrap(appErr, ErrInvalidParam, "额外信息")
	suite.Equal(ErrRoomFull, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrNotRoomHost)
	suite.True(Is(err, ErrNotRoomHost))
	suite.False(Is(err, ErrRoomNotFound))
	suite.False(Is(nil, ErrNotRoomHost))
	suite.False(Is(errors.New("普通错误"), ErrNotRoomHost))
}

// 测试错误码提取
func (suite *ErrorsTestSuite) TestGetCode() {
	suite.Equal(ErrorCode(0), GetCode(nil))
	suite.Equal(ErrGameAlreadyOver, GetCode(New(ErrGameAlreadyOver)))
	suite.Equal(ErrUnknown, GetCode(errors.New("普通错误")))
}

// 测试Error方法输出
func (suite *ErrorsTestSuite) TestErrorString() {
	err := New(ErrRoomNotFound)
	suite.Equal("[2000] 房间不存在", err.Error())

	err = New(ErrRoomNotFound, "id=xyz")
	suite.Equal("[2000] 房间不存在: id=xyz", err.Error())
}

// 测试Unwrap
func (suite *ErrorsTestSuite) TestUnwrap() {
	cause := errors.New("底层错误")
	err := New(ErrDatabaseInsert).WithCause(cause)
	suite.Equal(cause, errors.Unwrap(err))
	suite.True(errors.Is(err, cause))
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	suite.Equal(400, New(ErrInvalidParam).HTTPStatus())
	suite.Equal(404, New(ErrRoomNotFound).HTTPStatus())
	suite.Equal(403, New(ErrNotRoomHost).HTTPStatus())
	suite.Equal(401, New(ErrTokenExpired).HTTPStatus())
	suite.Equal(409, New(ErrRoomFull).HTTPStatus())
	suite.Equal(503, New(ErrDatabaseConnect).HTTPStatus())
	suite.Equal(500, New(ErrUnknown).HTTPStatus())
}

// 测试可重试判断
func (suite *ErrorsTestSuite) TestIsRetryable() {
	suite.True(IsRetryable(New(ErrTimeout)))
	suite.True(IsRetryable(New(ErrDatabaseConnect)))
	suite.False(IsRetryable(New(ErrRoomFull)))
	suite.False(IsRetryable(nil))
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
